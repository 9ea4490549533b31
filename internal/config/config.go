package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds user-editable settings, read from an optional TOML file.
type Config struct {
	// ClaudeDir is the Claude data directory (default ~/.claude).
	ClaudeDir string `toml:"claude_dir"`
	// CacheDir overrides the platform cache root for the index cache.
	CacheDir string `toml:"cache_dir"`

	Log LogConfig `toml:"log"`
}

type LogConfig struct {
	Dir        string `toml:"dir"`
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.ClaudeDir = filepath.Join(home, ".claude")
	}
	return cfg
}

// DefaultPath returns the conventional config file location,
// e.g. ~/.config/histx/config.toml on Linux.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config directory: %w", err)
	}
	return filepath.Join(base, "histx", "config.toml"), nil
}

// Load reads the config file at path, applying defaults for anything unset.
// A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.ClaudeDir == "" {
		return nil, fmt.Errorf("claude_dir is empty and no home directory is available")
	}
	return cfg, nil
}
