package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/safedrive-ia/safedrive/internal/config"
	"github.com/safedrive-ia/safedrive/internal/tui"
	"github.com/safedrive-ia/safedrive/internal/tui/theme"
	"github.com/safedrive-ia/safedrive/internal/view"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagNoWatch bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&flagNoWatch, "no-watch", false, "Do not reload when the SQLite database changes")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	// Anything written to stderr would tear the alternate screen.
	loader := view.NewLoader(backend, loaderOptions(cfg, slog.New(slog.DiscardHandler)))

	app := tui.Config{
		Loader:          loader,
		Filter:          filter(),
		AutoRefresh:     cfg.TUI.AutoRefresh,
		RefreshInterval: time.Duration(cfg.TUI.RefreshIntervalSec) * time.Second,
	}
	if cfg.Backend.Kind == config.BackendSQLite && cfg.TUI.WatchDB && !flagNoWatch {
		w, err := tui.Watch(config.GetDBPath(cfg))
		if err != nil {
			progress("Not watching the database: %v", err)
		} else {
			defer func() { _ = w.Close() }()
			app.Changes = w.Changes()
		}
	}

	p := tea.NewProgram(tui.NewApp(app), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
