// Package config loads and saves the safedrive TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Backend kinds.
const (
	BackendSQLite = "sqlite"
	BackendREST   = "rest"
)

// Config holds all safedrive configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Analytics  AnalyticsConfig  `toml:"analytics"`
	Backend    BackendConfig    `toml:"backend"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
}

// GeneralConfig holds window and display preferences.
type GeneralConfig struct {
	DefaultDays   int    `toml:"default_days"`
	DashboardDays int    `toml:"dashboard_days"`
	Timezone      string `toml:"timezone,omitempty"`
	LabelLocale   string `toml:"label_locale"`
}

// AnalyticsConfig holds aggregation settings.
type AnalyticsConfig struct {
	PositiveEmotions []string `toml:"positive_emotions"`
	TopEmotions      int      `toml:"top_emotions"`
	PageSize         int      `toml:"page_size"`
	RecentEvents     int      `toml:"recent_events"`
}

// BackendConfig selects and configures the event store.
type BackendConfig struct {
	Kind       string `toml:"kind"`
	DBPath     string `toml:"db_path,omitempty"`
	RESTURL    string `toml:"rest_url,omitempty"`
	APIKey     string `toml:"api_key,omitempty"`
	TimeoutSec int    `toml:"timeout_sec,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard refresh settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
	WatchDB            bool `toml:"watch_db"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultDays:   30,
			DashboardDays: 7,
			LabelLocale:   "es",
		},
		Analytics: AnalyticsConfig{
			PositiveEmotions: []string{"alerta", "feliz", "calmado"},
			TopEmotions:      5,
			PageSize:         10,
			RecentEvents:     5,
		},
		Backend: BackendConfig{
			Kind:       BackendSQLite,
			TimeoutSec: 10,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8790",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 30,
			WatchDB:            true,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "safedrive")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "safedrive")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "safedrive")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "safedrive")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Validate rejects settings that no view could compute with.
func (c Config) Validate() error {
	var errs []error
	if c.General.DefaultDays < 1 {
		errs = append(errs, fmt.Errorf("general.default_days must be at least 1, got %d", c.General.DefaultDays))
	}
	if c.General.DashboardDays < 1 {
		errs = append(errs, fmt.Errorf("general.dashboard_days must be at least 1, got %d", c.General.DashboardDays))
	}
	if c.Analytics.PageSize < 1 {
		errs = append(errs, fmt.Errorf("analytics.page_size must be at least 1, got %d", c.Analytics.PageSize))
	}
	if c.Analytics.TopEmotions < 1 {
		errs = append(errs, fmt.Errorf("analytics.top_emotions must be at least 1, got %d", c.Analytics.TopEmotions))
	}
	if c.Analytics.RecentEvents < 1 {
		errs = append(errs, fmt.Errorf("analytics.recent_events must be at least 1, got %d", c.Analytics.RecentEvents))
	}
	switch c.Backend.Kind {
	case BackendSQLite:
	case BackendREST:
		if c.Backend.RESTURL == "" {
			errs = append(errs, errors.New("backend.rest_url is required for the rest backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("backend.kind must be %q or %q, got %q", BackendSQLite, BackendREST, c.Backend.Kind))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location returns the configured timezone, or the local zone when unset.
func (c Config) Location() (*time.Location, error) {
	if c.General.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.General.Timezone)
	if err != nil {
		return nil, fmt.Errorf("general.timezone: %w", err)
	}
	return loc, nil
}

// GetAPIKey returns the backend API key from env var or config, in that order.
func GetAPIKey(cfg Config) string {
	if key := os.Getenv("SAFEDRIVE_API_KEY"); key != "" {
		return key
	}
	return cfg.Backend.APIKey
}

// GetDBPath returns the SQLite path from env var, config, or the default
// data directory, in that order.
func GetDBPath(cfg Config) string {
	if p := os.Getenv("SAFEDRIVE_DB"); p != "" {
		return p
	}
	if cfg.Backend.DBPath != "" {
		return cfg.Backend.DBPath
	}
	return filepath.Join(DataDir(), "safedrive.db")
}

// Timeout returns the backend request timeout.
func (c Config) Timeout() time.Duration {
	if c.Backend.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Backend.TimeoutSec) * time.Second
}
