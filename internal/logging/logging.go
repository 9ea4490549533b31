package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Component names used with ForComponent.
const (
	CompScanner = "scanner"
	CompParser  = "parser"
	CompIndex   = "index"
	CompCache   = "cache"
	CompWatcher = "watcher"
	CompTUI     = "tui"
	CompCLI     = "cli"
)

// Config holds logging configuration.
type Config struct {
	// Dir is the directory for the rotated log file. Empty disables file
	// logging; warnings still go to stderr.
	Dir string

	// Level is the minimum level: "debug", "info", "warn", "error".
	Level string

	// Format is "json" (default) or "text".
	Format string

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu      sync.RWMutex
	root    *slog.Logger
	rotated *lumberjack.Logger
)

// Init sets up the process-wide logger. Without a log dir, messages at warn
// and above go to stderr so cache and scan problems stay visible.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 14
	}

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var w io.Writer
	if cfg.Dir == "" {
		w = os.Stderr
		level = max(level, slog.LevelWarn)
	} else {
		rotated = &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, "histx.log"),
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		w = rotated
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		root = slog.New(slog.NewTextHandler(w, opts))
	} else {
		root = slog.New(slog.NewJSONHandler(w, opts))
	}
}

// Logger returns the process-wide logger. Safe before Init.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if root == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return root
}

// ForComponent returns a sub-logger tagged with the component name. The
// returned logger resolves the real handler at log time, so package-level
// loggers created before Init still pick up the configured handler.
func ForComponent(name string) *slog.Logger {
	return slog.New(&lazyHandler{component: name})
}

// Shutdown closes the rotated log file, if any.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	if rotated != nil {
		rotated.Close()
		rotated = nil
	}
	root = nil
}

type lazyHandler struct {
	component string
	attrs     []slog.Attr
	group     string
}

func (h *lazyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return Logger().Handler().Enabled(ctx, level)
}

func (h *lazyHandler) Handle(ctx context.Context, r slog.Record) error {
	handler := Logger().Handler()
	handler = handler.WithAttrs([]slog.Attr{slog.String("component", h.component)})
	if len(h.attrs) > 0 {
		handler = handler.WithAttrs(h.attrs)
	}
	if h.group != "" {
		handler = handler.WithGroup(h.group)
	}
	return handler.Handle(ctx, r)
}

func (h *lazyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &lazyHandler{component: h.component, attrs: merged, group: h.group}
}

func (h *lazyHandler) WithGroup(name string) slog.Handler {
	return &lazyHandler{component: h.component, attrs: h.attrs, group: name}
}
