package index

import (
	"github.com/pcarlton/histx/internal/scanner"
)

// CacheVersion gates cache reuse across on-disk format changes. Bump it
// whenever Metadata or the entry encoding changes incompatibly; old caches
// are then rebuilt from source instead of partially reused.
const CacheVersion = 1

// Metadata is the persisted descriptor for one cache namespace: the schema
// version plus the fingerprint of every source the cached entries were built
// from. History is nil when no history.jsonl existed at build time. Metadata
// and the entry blob are always written and replaced together.
type Metadata struct {
	Version  int                                   `json:"version"`
	History  *scanner.LogFingerprint               `json:"history_file"`
	Projects map[string]scanner.ProjectFingerprint `json:"projects"`
}

// NewMetadata returns an empty metadata document at the current version.
func NewMetadata() *Metadata {
	return &Metadata{
		Version:  CacheVersion,
		Projects: make(map[string]scanner.ProjectFingerprint),
	}
}
