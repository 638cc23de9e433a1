// Package config loads the tickdeck configuration file and resolves
// application paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the application directory name.
	AppName = "tickdeck"

	// ConfigFile is the TOML configuration filename.
	ConfigFile = "config.toml"

	// TokenFile is the stored API token filename.
	TokenFile = "token.json"

	// StateFile is the persisted widget state filename.
	StateFile = "state.json"

	// CacheDBFile is the local task cache database filename.
	CacheDBFile = "tasks.db"
)

// Config holds the user-tunable settings. Any field absent from the
// file keeps its default.
type Config struct {
	// APIBaseURL is the root of the remote task service.
	APIBaseURL string `toml:"api_base_url"`

	// RefreshSeconds is the interval between full remote refreshes.
	RefreshSeconds int `toml:"refresh_seconds"`

	// TimeoutSeconds bounds every remote call.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// Timezone is the fallback IANA zone for tasks without a usable
	// zone of their own. Empty means the host local zone.
	Timezone string `toml:"timezone"`

	// Theme is the default theme id, overridden by persisted state.
	Theme string `toml:"theme"`

	// Dir is the resolved configuration directory, not a file field.
	Dir string `toml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIBaseURL:     "https://api.ticktick.com",
		RefreshSeconds: 300,
		TimeoutSeconds: 30,
		Theme:          "dark",
		Dir:            DefaultConfigDir(),
	}
}

// Load reads the configuration from dir (empty means the default
// directory). A missing file yields the defaults; a malformed file or
// an unknown timezone is an error.
func Load(dir string) (*Config, error) {
	cfg := Default()
	if dir != "" {
		cfg.Dir = dir
	}

	path := filepath.Join(cfg.Dir, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if cfg.RefreshSeconds <= 0 {
		return nil, fmt.Errorf("refresh_seconds must be positive, got %d", cfg.RefreshSeconds)
	}
	if cfg.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("timeout_seconds must be positive, got %d", cfg.TimeoutSeconds)
	}
	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return nil, fmt.Errorf("unknown timezone %q: %w", cfg.Timezone, err)
		}
	}
	return cfg, nil
}

// DefaultConfigDir returns XDG_CONFIG_HOME/tickdeck, falling back to
// $HOME/.config/tickdeck.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// EnsureDir creates the configuration directory if needed.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// TokenPath returns the path to the stored API token.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// StatePath returns the path to the persisted widget state document.
func (c *Config) StatePath() string {
	return filepath.Join(c.Dir, StateFile)
}

// DBPath returns the path to the local task cache database.
func (c *Config) DBPath() string {
	return filepath.Join(c.Dir, CacheDBFile)
}

// RefreshInterval returns the refresh period as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshSeconds) * time.Second
}

// RequestTimeout returns the per-call timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
