package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Paths   PathsConfig   `mapstructure:"paths"`
	Logging LoggingConfig `mapstructure:"logging"`
	Flatpak FlatpakConfig `mapstructure:"flatpak"`
	Cache   CacheConfig   `mapstructure:"cache"`
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	DataDir string `mapstructure:"data_dir"`
	LogFile string `mapstructure:"log_file"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Color string `mapstructure:"color"`
}

// FlatpakConfig contains flatpak backend configuration
type FlatpakConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Command  string `mapstructure:"command"`
	UserDir  string `mapstructure:"user_dir"` // overrides $XDG_DATA_HOME/flatpak; FLATPAK_USER_DIR still wins
	IconSize int    `mapstructure:"icon_size"`
}

// CacheConfig contains AppStream cache configuration
type CacheConfig struct {
	MaxEntries  int           `mapstructure:"max_entries"`
	TTL         time.Duration `mapstructure:"ttl"`
	WarmWorkers int           `mapstructure:"warm_workers"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("toml")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".config", "appcenter"))
	}
	v.AddConfigPath(".")

	setDefaults(v)

	// Environment variable overrides
	v.SetEnvPrefix("APPCENTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Paths.DataDir = expandPath(cfg.Paths.DataDir)
	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)
	cfg.Flatpak.UserDir = expandPath(cfg.Flatpak.UserDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the built-in configuration without reading files or the environment
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate rejects settings the backends cannot work with
func (c *Config) Validate() error {
	if c.Flatpak.IconSize < 0 {
		return fmt.Errorf("flatpak.icon_size must not be negative, got %d", c.Flatpak.IconSize)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Cache.WarmWorkers < 0 {
		return fmt.Errorf("cache.warm_workers must not be negative, got %d", c.Cache.WarmWorkers)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		homeDir = "."
	}

	v.SetDefault("paths.data_dir", filepath.Join(homeDir, ".local", "share", "appcenter"))
	v.SetDefault("paths.log_file", filepath.Join(homeDir, ".local", "share", "appcenter", "appcenter.log"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.color", "auto")

	v.SetDefault("flatpak.enabled", true)
	v.SetDefault("flatpak.command", "flatpak")
	v.SetDefault("flatpak.user_dir", "")
	v.SetDefault("flatpak.icon_size", 128)

	v.SetDefault("cache.max_entries", 256)
	v.SetDefault("cache.ttl", "0s")
	v.SetDefault("cache.warm_workers", 4)
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand ~
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	// Expand environment variables
	path = os.ExpandEnv(path)

	return path
}
