package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.ClaudeDir == "" {
		t.Error("Default() claude dir is empty")
	}
	if !strings.HasSuffix(cfg.ClaudeDir, ".claude") {
		t.Errorf("Default() claude dir = %q, want .claude suffix", cfg.ClaudeDir)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Default() log level = %q, want info", cfg.Log.Level)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ClaudeDir != Default().ClaudeDir {
		t.Errorf("Load() claude dir = %q, want default", cfg.ClaudeDir)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
claude_dir = "/custom/claude"
cache_dir = "/custom/cache"

[log]
level = "debug"
format = "text"
max_size_mb = 25
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ClaudeDir != "/custom/claude" {
		t.Errorf("claude_dir = %q", cfg.ClaudeDir)
	}
	if cfg.CacheDir != "/custom/cache" {
		t.Errorf("cache_dir = %q", cfg.CacheDir)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" || cfg.Log.MaxSizeMB != 25 {
		t.Errorf("log config = %+v", cfg.Log)
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("claude_dir = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid TOML")
	}
}
