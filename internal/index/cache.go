package index

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pcarlton/histx/internal/logging"
	"github.com/pcarlton/histx/internal/models"
	"github.com/pcarlton/histx/internal/scanner"
)

var cacheLog = logging.ForComponent(logging.CompCache)

const (
	appCacheDirName  = "histx"
	metadataFileName = "index-metadata.json"
	dataFileName     = "search-index.bin"

	// namespaceHashLen is how many hex characters of the source-root hash
	// name the namespace directory. 48 bits is plenty for the handful of
	// source roots a single machine will ever index.
	namespaceHashLen = 12
)

// DefaultCacheRoot returns the per-user cache root for this tool, e.g.
// ~/.cache/histx on Linux.
func DefaultCacheRoot() (string, error) {
	root, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache directory: %w", err)
	}
	return filepath.Join(root, appCacheDirName), nil
}

// Namespace resolves and creates the cache directory for one source root.
// The directory name is a truncated hash of the canonicalized root, so
// different Claude directories (real, test fixture, synced from another
// machine) never share cache files.
func Namespace(cacheRoot, sourceRoot string) (string, error) {
	abs, err := filepath.Abs(sourceRoot)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source root %s: %w", sourceRoot, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// The root may not exist yet on a fresh machine; hash the absolute
		// path so the namespace stays stable once it appears.
		canonical = abs
	}

	sum := sha256.Sum256([]byte(canonical))
	dir := filepath.Join(cacheRoot, hex.EncodeToString(sum[:])[:namespaceHashLen])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return dir, nil
}

// Load reads the cached metadata and entry blob from a namespace directory.
// A missing file, a corrupt file, a version mismatch, or metadata without
// its data file all collapse into ok=false: the caller has exactly one
// fallback, a full rebuild, and the cause only matters for the log.
func Load(namespace string) (*Metadata, []models.Entry, bool) {
	metaPath := filepath.Join(namespace, metadataFileName)
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		if !os.IsNotExist(err) {
			cacheLog.Warn("cache_metadata_unreadable",
				slog.String("path", metaPath),
				slog.String("error", err.Error()))
		}
		return nil, nil, false
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		cacheLog.Warn("cache_metadata_corrupt",
			slog.String("path", metaPath),
			slog.String("error", err.Error()))
		return nil, nil, false
	}
	if meta.Version != CacheVersion {
		cacheLog.Info("cache_version_mismatch",
			slog.Int("found", meta.Version),
			slog.Int("expected", CacheVersion))
		return nil, nil, false
	}
	if meta.Projects == nil {
		meta.Projects = make(map[string]scanner.ProjectFingerprint)
	}

	dataPath := filepath.Join(namespace, dataFileName)
	f, err := os.Open(dataPath)
	if err != nil {
		// Metadata without its blob means a save was interrupted between
		// the two renames, or the blob was removed by hand. Either way the
		// metadata cannot be trusted.
		cacheLog.Warn("cache_data_missing",
			slog.String("path", dataPath),
			slog.String("error", err.Error()))
		return nil, nil, false
	}
	defer f.Close()

	var entries []models.Entry
	if err := gob.NewDecoder(f).Decode(&entries); err != nil {
		cacheLog.Warn("cache_data_corrupt",
			slog.String("path", dataPath),
			slog.String("error", err.Error()))
		return nil, nil, false
	}

	cacheLog.Debug("cache_loaded",
		slog.String("namespace", namespace),
		slog.Int("entries", len(entries)))
	return &meta, entries, true
}

// Save persists the entry blob and metadata into a namespace directory. Each
// artifact is written to a temp file and renamed into place; the blob is
// renamed first so a crash between the two renames leaves new data with old
// metadata, which the next Load treats as a plain cache miss.
func Save(namespace string, meta *Metadata, entries []models.Entry) error {
	if err := writeAtomic(namespace, dataFileName, func(f *os.File) error {
		return gob.NewEncoder(f).Encode(entries)
	}); err != nil {
		return fmt.Errorf("failed to write index data: %w", err)
	}

	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode index metadata: %w", err)
	}
	if err := writeAtomic(namespace, metadataFileName, func(f *os.File) error {
		_, werr := f.Write(raw)
		return werr
	}); err != nil {
		return fmt.Errorf("failed to write index metadata: %w", err)
	}

	cacheLog.Debug("cache_saved",
		slog.String("namespace", namespace),
		slog.Int("entries", len(entries)))
	return nil
}

func writeAtomic(dir, name string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
