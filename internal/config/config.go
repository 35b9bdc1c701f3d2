// Package config loads progsync settings.
//
// Precedence, lowest to highest: built-in defaults, a config file
// (progsync.yaml or progsync.toml in the working directory or
// $HOME/.config/progsync, or an explicit --config path), PROGSYNC_*
// environment variables, and command-line flags bound by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/smarttorque/progsync/internal/logging"
	"github.com/smarttorque/progsync/internal/store"
)

// EnvPrefix is prepended to every environment variable, e.g.
// PROGSYNC_DATABASE_DSN for database.dsn.
const EnvPrefix = "PROGSYNC"

// Config is the resolved configuration.
type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`

	// ProblemLog receives one line per problem file after each run.
	ProblemLog string `mapstructure:"problem_log"`
	// SynonymsFile replaces the built-in header synonyms (YAML or TOML).
	SynonymsFile string `mapstructure:"synonyms_file"`
}

// SourceConfig selects which files are imported.
type SourceConfig struct {
	Root         string `mapstructure:"root"`
	List         string `mapstructure:"list"`
	Extension    string `mapstructure:"extension"`
	BackupMarker string `mapstructure:"backup_marker"`
	Since        string `mapstructure:"since"`
}

// DatabaseConfig selects the store.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LogConfig mirrors logging.Config.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Dir        string        `mapstructure:"dir"`
	CreatedLog string        `mapstructure:"created_log"`
	Debounce   time.Duration `mapstructure:"debounce"`
	Reimport   bool          `mapstructure:"reimport"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// SetDefaults registers every known key. Keys must have a default to be
// picked up from the environment by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source.root", "")
	v.SetDefault("source.list", "")
	v.SetDefault("source.extension", ".xlsx")
	v.SetDefault("source.backup_marker", "backup")
	v.SetDefault("source.since", "")

	v.SetDefault("database.driver", string(store.DriverSQLite))
	v.SetDefault("database.dsn", "progsync.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("problem_log", filepath.Join("logs", "problem_files.txt"))
	v.SetDefault("synonyms_file", "")

	v.SetDefault("watch.dir", "")
	v.SetDefault("watch.created_log", filepath.Join("logs", "last_created.json"))
	v.SetDefault("watch.debounce", 2*time.Second)
	v.SetDefault("watch.reimport", false)

	v.SetDefault("metrics.addr", "")
}

// Load reads the config file into v and returns the resolved Config. An
// explicit configFile must exist; otherwise a missing file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("progsync")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "progsync"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := store.ParseDriver(c.Database.Driver); err != nil {
		return err
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if !strings.HasPrefix(c.Source.Extension, ".") {
		return fmt.Errorf("source.extension must start with a dot (got %q)", c.Source.Extension)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// Logging converts the log section to a logging.Config.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}
