package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pcarlton/histx/internal/config"
	"github.com/pcarlton/histx/internal/index"
	"github.com/pcarlton/histx/internal/logging"
	"github.com/pcarlton/histx/internal/models"
)

var (
	cfgPath   string
	claudeDir string
	noCache   bool

	cfg *config.Config
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "histx",
		Short: "Search your Claude Code conversation history",
		Long: `histx indexes the prompts and replies recorded under ~/.claude and makes
them searchable. The index is cached and updated incrementally, so repeat
runs only reparse what changed. Run without a subcommand to open the
interactive browser.`,
		Version:           "0.1.0",
		PersistentPreRunE: initApp,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file (default: ~/.config/histx/config.toml)")
	rootCmd.PersistentFlags().StringVar(&claudeDir, "claude-dir", "", "Claude directory to index (default: ~/.claude)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Rebuild the index from scratch, ignoring the cache")

	rootCmd.AddCommand(
		NewSearchCommand(),
		NewStatsCommand(),
		NewBrowseCommand(),
	)

	return rootCmd
}

func initApp(cmd *cobra.Command, args []string) error {
	path := cfgPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}

	loaded, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	if claudeDir != "" {
		cfg.ClaudeDir = claudeDir
	}

	logging.Init(logging.Config{
		Dir:        cfg.Log.Dir,
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	return nil
}

// buildIndex runs one reconciliation for the configured Claude directory.
func buildIndex() ([]models.Entry, error) {
	return index.Build(index.BuildOptions{
		ClaudeDir: cfg.ClaudeDir,
		CacheRoot: cfg.CacheDir,
		NoCache:   noCache,
	})
}

func Execute() {
	defer logging.Shutdown()
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
