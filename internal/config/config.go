// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/chousei/internal/grid"
)

// Config holds the application configuration.
type Config struct {
	Grid    GridConfig    `toml:"grid"`
	User    UserConfig    `toml:"user"`
	Storage StorageConfig `toml:"storage"`
	Share   ShareConfig   `toml:"share"`
	Log     LogConfig     `toml:"log"`
	UI      UIConfig      `toml:"ui"`
}

// GridConfig holds the week grid geometry.
type GridConfig struct {
	StartHour  int     `toml:"start_hour" validate:"gte=0,lt=24"`
	EndHour    int     `toml:"end_hour" validate:"gt=0,lte=24,gtfield=StartHour"`
	HourHeight float64 `toml:"hour_height" validate:"gt=0"`
}

// UserConfig holds the default identity used for votes and shares.
type UserConfig struct {
	Name string `toml:"name"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path" validate:"required"`
}

// ShareConfig holds share link settings.
type ShareConfig struct {
	BaseURL string `toml:"base_url" validate:"required,url"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
	File  string `toml:"file"` // empty logs to stderr
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme" validate:"oneof=mocha macchiato frappe latte"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			StartHour:  grid.DefaultTimeRange.Start,
			EndHour:    grid.DefaultTimeRange.End,
			HourHeight: grid.DefaultHourHeight,
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Share: ShareConfig{
			BaseURL: "https://chousei.app/",
		},
		Log: LogConfig{
			Level: "warn",
		},
		UI: UIConfig{
			Theme: "frappe",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chousei.db"
	}
	return filepath.Join(home, ".local", "share", "chousei", "chousei.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "chousei", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies CHOUSEI_* environment variables on top of the file config.
func applyEnvOverrides(cfg *Config) error {
	ints := map[string]*int{
		"CHOUSEI_START_HOUR": &cfg.Grid.StartHour,
		"CHOUSEI_END_HOUR":   &cfg.Grid.EndHour,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s must be an integer, got %q", key, v)
			}
			*dst = n
		}
	}

	strs := map[string]*string{
		"CHOUSEI_USER_NAME": &cfg.User.Name,
		"CHOUSEI_DB_PATH":   &cfg.Storage.DBPath,
		"CHOUSEI_BASE_URL":  &cfg.Share.BaseURL,
		"CHOUSEI_LOG_LEVEL": &cfg.Log.Level,
		"CHOUSEI_LOG_FILE":  &cfg.Log.File,
		"CHOUSEI_UI_THEME":  &cfg.UI.Theme,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

var validate = validator.New()

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Field() {
	case "EndHour", "StartHour":
		return fmt.Errorf("%w: start_hour=%d end_hour=%d", grid.ErrInvalidTimeRange, c.Grid.StartHour, c.Grid.EndHour)
	case "HourHeight":
		return errors.New("hour_height must be positive")
	case "DBPath":
		return errors.New("db_path must be set")
	case "BaseURL":
		return fmt.Errorf("base_url must be an absolute URL, got %q", c.Share.BaseURL)
	case "Level":
		return fmt.Errorf("log level must be one of debug, info, warn, error, got %q", c.Log.Level)
	case "Theme":
		return fmt.Errorf("unknown theme %q", c.UI.Theme)
	default:
		return fmt.Errorf("%s: failed %s", fe.Namespace(), fe.Tag())
	}
}

// TimeRange returns the configured display window.
func (c *Config) TimeRange() grid.TimeRange {
	return grid.TimeRange{Start: c.Grid.StartHour, End: c.Grid.EndHour}
}

// GridGeometry returns the grid geometry.
func (c *Config) GridGeometry() grid.Config {
	return grid.Config{HourHeight: c.Grid.HourHeight, Range: c.TimeRange()}
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
