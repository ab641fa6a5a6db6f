package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/safedrive-ia/safedrive/internal/config"
	"github.com/safedrive-ia/safedrive/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupValues holds the form fields as strings until they are validated.
type setupValues struct {
	backend  string
	dbPath   string
	restURL  string
	apiKey   string
	days     int
	timezone string
	locale   string
	theme    string
	pageSize string
}

func runSetup(_ *cobra.Command, _ []string) error {
	if !interactive() {
		return errors.New("setup needs an interactive terminal")
	}

	cfg, _ := config.Load()
	vals := setupValues{
		backend:  cfg.Backend.Kind,
		dbPath:   config.GetDBPath(cfg),
		restURL:  cfg.Backend.RESTURL,
		days:     cfg.General.DefaultDays,
		timezone: cfg.General.Timezone,
		locale:   cfg.General.LabelLocale,
		theme:    cfg.Appearance.Theme,
		pageSize: strconv.Itoa(cfg.Analytics.PageSize),
	}
	existingKey := config.GetAPIKey(cfg)

	if err := newSetupForm(&vals, existingKey).Run(); err != nil {
		return err
	}

	cfg.Backend.Kind = vals.backend
	switch vals.backend {
	case config.BackendREST:
		cfg.Backend.RESTURL = strings.TrimSpace(vals.restURL)
		if k := strings.TrimSpace(vals.apiKey); k != "" {
			cfg.Backend.APIKey = k
		}
	default:
		cfg.Backend.DBPath = strings.TrimSpace(vals.dbPath)
	}
	cfg.General.DefaultDays = vals.days
	cfg.General.Timezone = strings.TrimSpace(vals.timezone)
	cfg.General.LabelLocale = vals.locale
	cfg.Appearance.Theme = vals.theme
	if n, err := strconv.Atoi(vals.pageSize); err == nil {
		cfg.Analytics.PageSize = n
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `safedrive setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func newSetupForm(v *setupValues, existingKey string) *huh.Form {
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}
	keyTitle := "API key (Enter keeps it unchanged)"
	if existingKey != "" {
		keyTitle = fmt.Sprintf("API key (current %s, Enter keeps it)", maskAPIKey(existingKey))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to safedrive").
				Description("Point safedrive at your driver monitoring data."),
			huh.NewSelect[string]().
				Title("Event store").
				Options(
					huh.NewOption("Local SQLite database", config.BackendSQLite),
					huh.NewOption("Remote REST (PostgREST / Supabase)", config.BackendREST),
				).
				Value(&v.backend),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("SQLite database path").
				Value(&v.dbPath).
				Validate(required("database path")),
		).WithHideFunc(func() bool { return v.backend != config.BackendSQLite }),
		huh.NewGroup(
			huh.NewInput().
				Title("REST base URL").
				Placeholder("https://xyz.supabase.co").
				Value(&v.restURL).
				Validate(required("REST URL")),
			huh.NewInput().
				Title(keyTitle).
				EchoMode(huh.EchoModePassword).
				Value(&v.apiKey),
		).WithHideFunc(func() bool { return v.backend != config.BackendREST }),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Default time range").
				Options(
					huh.NewOption("7 days", 7),
					huh.NewOption("30 days", 30),
					huh.NewOption("90 days", 90),
				).
				Value(&v.days),
			huh.NewInput().
				Title("Timezone (blank for local)").
				Placeholder("America/Lima").
				Value(&v.timezone),
			huh.NewSelect[string]().
				Title("Day label language").
				Options(huh.NewOption("Español", "es"), huh.NewOption("English", "en")).
				Value(&v.locale),
			huh.NewInput().
				Title("Rows per page").
				Value(&v.pageSize).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(s); err != nil || n < 1 {
						return errors.New("enter a positive number")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.theme),
		),
	).WithTheme(formTheme())
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
