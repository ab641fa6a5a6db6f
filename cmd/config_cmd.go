// Package cmd implements the safedrive CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/safedrive-ia/safedrive/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("  Problems:\n    %s\n", strings.ReplaceAll(err.Error(), "\n", "\n    "))
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default days:   %d\n", cfg.General.DefaultDays)
	fmt.Printf("    Dashboard days: %d\n", cfg.General.DashboardDays)
	tz := cfg.General.Timezone
	if tz == "" {
		tz = "local"
	}
	fmt.Printf("    Timezone:       %s\n", tz)
	fmt.Printf("    Label locale:   %s\n", cfg.General.LabelLocale)
	fmt.Println()

	fmt.Println("  [Analytics]")
	fmt.Printf("    Positive emotions: %s\n", strings.Join(cfg.Analytics.PositiveEmotions, ", "))
	fmt.Printf("    Top emotions:      %d\n", cfg.Analytics.TopEmotions)
	fmt.Printf("    Page size:         %d\n", cfg.Analytics.PageSize)
	fmt.Printf("    Recent events:     %d\n", cfg.Analytics.RecentEvents)
	fmt.Println()

	fmt.Println("  [Backend]")
	fmt.Printf("    Kind: %s\n", cfg.Backend.Kind)
	switch cfg.Backend.Kind {
	case config.BackendREST:
		fmt.Printf("    URL:     %s\n", cfg.Backend.RESTURL)
		if key := config.GetAPIKey(cfg); key != "" {
			fmt.Printf("    API key: %s\n", maskAPIKey(key))
		} else {
			fmt.Println("    API key: not configured")
		}
		fmt.Printf("    Timeout: %s\n", cfg.Timeout())
	default:
		fmt.Printf("    Database: %s\n", config.GetDBPath(cfg))
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh: %v every %ds\n", cfg.TUI.AutoRefresh, cfg.TUI.RefreshIntervalSec)
	fmt.Printf("    Watch DB:     %v\n", cfg.TUI.WatchDB)
	fmt.Println()

	fmt.Println("  Run `safedrive setup` to reconfigure.")
	return nil
}
