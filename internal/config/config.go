// Package config loads coursesync settings from defaults, an optional YAML
// file, COURSESYNC_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/coursesync/internal/logging"
	"github.com/roach88/coursesync/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. COURSESYNC_DATABASE_PATH.
const EnvPrefix = "COURSESYNC"

// Config represents the complete coursesync configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Audit    AuditConfig    `mapstructure:"audit"`
}

// DatabaseConfig selects the SQLite file and driver
type DatabaseConfig struct {
	// Path is the SQLite database file (default: "coursesync.db")
	Path string `mapstructure:"path"`
	// Driver is the database/sql driver name
	// Options: "sqlite3" (cgo, default), "sqlite" (pure Go)
	Driver string `mapstructure:"driver"`
}

// LogConfig controls logger output
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Format is "console" or "json" (default: "console")
	Format string `mapstructure:"format"`
}

// EngineConfig controls cascade behavior
type EngineConfig struct {
	// StrictTransactions wraps every course read-modify-write in a
	// transaction. When false only the progress-deleted cascade is
	// transactional.
	StrictTransactions bool `mapstructure:"strict_transactions"`
}

// AuditConfig controls the consistency checker
type AuditConfig struct {
	// Concurrency is the number of courses checked in parallel (default: 4)
	Concurrency int `mapstructure:"concurrency"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:   "coursesync.db",
			Driver: store.DriverMattn,
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Engine: EngineConfig{
			StrictTransactions: false,
		},
		Audit: AuditConfig{
			Concurrency: 4,
		},
	}
}

// SetDefaults registers every default on v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("database.path", defaults.Database.Path)
	v.SetDefault("database.driver", defaults.Database.Driver)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	v.SetDefault("engine.strict_transactions", defaults.Engine.StrictTransactions)

	v.SetDefault("audit.concurrency", defaults.Audit.Concurrency)
}

// New returns a viper instance with defaults, environment binding and, if
// found, the config file applied. cfgFile overrides the search path; a
// missing explicit file is an error, a missing searched file is not.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("coursesync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load reads the configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path: must not be empty"))
	}
	if c.Database.Driver != store.DriverMattn && c.Database.Driver != store.DriverModernc {
		errs = append(errs, fmt.Errorf("database.driver: %q is not %q or %q",
			c.Database.Driver, store.DriverMattn, store.DriverModernc))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: %q is not debug, info, warn or error", c.Log.Level))
	}
	if c.Log.Format != logging.FormatConsole && c.Log.Format != logging.FormatJSON {
		errs = append(errs, fmt.Errorf("log.format: %q is not %q or %q",
			c.Log.Format, logging.FormatConsole, logging.FormatJSON))
	}
	if c.Audit.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("audit.concurrency: %d must be at least 1", c.Audit.Concurrency))
	}
	return errors.Join(errs...)
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "coursesync")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".coursesync"
	}
	return filepath.Join(home, ".config", "coursesync")
}
