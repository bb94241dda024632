// Package config holds the file-backed configuration for the dictionary
// tool.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full on-disk configuration.
type Config struct {
	// BaseDictPath is the factory-shipped, read-only base dictionary.
	BaseDictPath string `yaml:"base_dict_path"`
	// UserDictPath is the persisted user dictionary document.
	UserDictPath string `yaml:"user_dict_path"`
	// HistoryDBPath is the SQLite mutation log. Empty disables history.
	HistoryDBPath string `yaml:"history_db_path"`
	// TempDir holds recompilation artifacts. Empty means the directory
	// of UserDictPath.
	TempDir string `yaml:"temp_dir"`
	// LockTimeout bounds how long an operation waits for the dictionary
	// lock, as a Go duration string.
	LockTimeout string `yaml:"lock_timeout"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		BaseDictPath:  "default.csv",
		UserDictPath:  "user_dict.json",
		HistoryDBPath: "history.db",
		LockTimeout:   "30s",
		Logging:       LoggingConfig{Level: "info"},
	}
}

// Load reads the configuration at path. A missing file yields Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories as
// needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LockTimeoutDuration parses LockTimeout, falling back to 30s on a missing
// or malformed value.
func (c *Config) LockTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.LockTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}
