package index

import (
	"log/slog"

	"github.com/pcarlton/histx/internal/models"
	"github.com/pcarlton/histx/internal/parser"
	"github.com/pcarlton/histx/internal/scanner"
)

// BuildOptions configures one index build.
type BuildOptions struct {
	// ClaudeDir is the source root, typically ~/.claude.
	ClaudeDir string
	// CacheRoot overrides the platform cache root. Empty means default.
	CacheRoot string
	// NoCache skips loading the prior cache, forcing a full rebuild. The
	// rebuilt index is still saved for subsequent runs.
	NoCache bool
}

// Build runs one full reconciliation cycle: resolve the cache namespace,
// load whatever prior index exists, scan the source tree, reconcile, and
// persist the result. Cache trouble at any stage degrades to a full rebuild
// or an unsaved result, never a failed build; only an unparseable history
// log fails the run.
func Build(opts BuildOptions) ([]models.Entry, error) {
	namespace := resolveNamespace(opts)

	var prior *Prior
	if namespace != "" && !opts.NoCache {
		if meta, entries, ok := Load(namespace); ok {
			prior = &Prior{Meta: meta, Entries: entries}
		}
	}

	snap, err := scanner.Scan(opts.ClaudeDir)
	if err != nil {
		return nil, err
	}

	meta, entries, err := Reconcile(prior, snap, parser.ParsePrimary, parser.ParseProject)
	if err != nil {
		return nil, err
	}

	if namespace != "" {
		if err := Save(namespace, meta, entries); err != nil {
			// The in-memory result is still good; only the next run loses
			// the reuse benefit.
			indexLog.Warn("cache_save_failed", slog.String("error", err.Error()))
		}
	}

	return entries, nil
}

// resolveNamespace returns the cache directory for this build, or "" when
// caching is unavailable.
func resolveNamespace(opts BuildOptions) string {
	root := opts.CacheRoot
	if root == "" {
		var err error
		root, err = DefaultCacheRoot()
		if err != nil {
			indexLog.Warn("cache_root_unavailable", slog.String("error", err.Error()))
			return ""
		}
	}
	namespace, err := Namespace(root, opts.ClaudeDir)
	if err != nil {
		indexLog.Warn("cache_namespace_unavailable", slog.String("error", err.Error()))
		return ""
	}
	return namespace
}
