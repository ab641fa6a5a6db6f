package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/safedrive-ia/safedrive/internal/cli"
	"github.com/safedrive-ia/safedrive/internal/config"
	"github.com/safedrive-ia/safedrive/internal/pipeline"
	"github.com/safedrive-ia/safedrive/internal/source"
	"github.com/safedrive-ia/safedrive/internal/store"
	"github.com/safedrive-ia/safedrive/internal/view"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	flagDays     int
	flagFrom     string
	flagTo       string
	flagBackend  string
	flagDB       string
	flagRESTURL  string
	flagOutput   string
	flagQuiet    bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:           "safedrive",
	Short:         "SafeDrive driver fatigue and emotion analytics",
	Long:          "Analyze fleet driver monitoring data: fatigue alerts, emotions, drivers and incidents.",
	RunE:          runDashboard,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		if invalidArg(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Lookback window in days (0 = configured default)")
	rootCmd.PersistentFlags().StringVar(&flagFrom, "from", "", "Start date, inclusive (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&flagTo, "to", "", "End date, inclusive (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Event store backend: sqlite or rest")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagRESTURL, "rest-url", "", "Base URL of the REST event store")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "table", "Output format: table, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn or error")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagBackend != "" {
		cfg.Backend.Kind = flagBackend
	}
	if flagDB != "" {
		cfg.Backend.DBPath = flagDB
	}
	if flagRESTURL != "" {
		cfg.Backend.RESTURL = flagRESTURL
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %w", pipeline.ErrInvalidArgument, err)
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(flagLogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	if flagQuiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openBackend opens the configured event store.
func openBackend(cfg config.Config) (source.Backend, error) {
	switch cfg.Backend.Kind {
	case config.BackendREST:
		return source.NewRESTClient(cfg.Backend.RESTURL, config.GetAPIKey(cfg), cfg.Timeout()), nil
	default:
		db, err := store.Open(config.GetDBPath(cfg))
		if err != nil {
			return nil, fmt.Errorf("opening event store: %w", err)
		}
		return db, nil
	}
}

func loaderOptions(cfg config.Config, log *slog.Logger) view.Options {
	loc, _ := cfg.Location()
	return view.Options{
		PositiveEmotions: cfg.Analytics.PositiveEmotions,
		TopEmotions:      cfg.Analytics.TopEmotions,
		PageSize:         cfg.Analytics.PageSize,
		RecentEvents:     cfg.Analytics.RecentEvents,
		DashboardDays:    cfg.General.DashboardDays,
		DefaultDays:      cfg.General.DefaultDays,
		Locale:           pipeline.Locale(cfg.General.LabelLocale),
		Location:         loc,
		Now:              time.Now,
		Logger:           log,
	}
}

// env is the shared state every data command runs with.
type env struct {
	cfg     config.Config
	backend source.Backend
	loader  *view.Loader
	format  cli.Format
	loc     *time.Location
}

func (e *env) Close() {
	_ = e.backend.Close()
}

// setup loads config, opens the backend and builds a view loader.
func setup() (*env, error) {
	format, err := cli.ParseFormat(flagOutput)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	backend, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	opts := loaderOptions(cfg, newLogger())
	return &env{
		cfg:     cfg,
		backend: backend,
		loader:  view.NewLoader(backend, opts),
		format:  format,
		loc:     opts.Location,
	}, nil
}

// filter builds the view filter from the persistent flags.
func filter() view.Filter {
	return view.Filter{From: flagFrom, To: flagTo, Days: flagDays}
}

// interactive reports whether stdout is a terminal.
func interactive() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progress prints a status line on stderr when a person is watching.
func progress(format string, args ...any) {
	if flagQuiet || !isatty.IsTerminal(os.Stderr.Fd()) {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}

// emit writes v in the structured format, reporting whether it did.
func (e *env) emit(v any) (bool, error) {
	if e.format == cli.FormatTable {
		return false, nil
	}
	return true, cli.Encode(os.Stdout, e.format, v)
}

// section prints the failed or empty banner for s and reports whether the
// caller should go on to render data.
func section(s view.Section, what, empty string) bool {
	switch s.Status {
	case view.StatusFailed:
		fmt.Println(cli.RenderFailed(what, s.Error))
		return false
	case view.StatusEmpty:
		fmt.Println(cli.RenderEmpty(empty))
		return false
	}
	return true
}

// invalidArg reports whether err is a usage error (exit status 2).
func invalidArg(err error) bool {
	return errors.Is(err, pipeline.ErrInvalidArgument)
}
