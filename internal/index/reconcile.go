package index

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/pcarlton/histx/internal/logging"
	"github.com/pcarlton/histx/internal/models"
	"github.com/pcarlton/histx/internal/scanner"
)

var indexLog = logging.ForComponent(logging.CompIndex)

// Prior is a previously cached index as returned by Load.
type Prior struct {
	Meta    *Metadata
	Entries []models.Entry
}

// ParsePrimaryFunc parses the history log into entries.
type ParsePrimaryFunc func(path string) ([]models.Entry, error)

// ParseProjectFunc parses every conversation file of one project.
type ParseProjectFunc func(info models.ProjectInfo) ([]models.Entry, error)

// Reconcile merges the prior cached index with the current state of the
// source tree, reparsing only the sources whose fingerprints changed.
//
// The history log is all-or-nothing: any mtime or size change triggers a
// full reparse, and a reparse failure aborts the build so a broken log
// never silently yields an empty index. Projects are independent: a changed
// or new project is reparsed, an unchanged one reuses its cached entries,
// a deleted one is dropped along with its entries, and a project that fails
// to parse is excluded from this run and retried on the next.
func Reconcile(prior *Prior, snap *scanner.Snapshot, parsePrimary ParsePrimaryFunc, parseProject ParseProjectFunc) (*Metadata, []models.Entry, error) {
	meta := NewMetadata()
	byOrigin := groupByOrigin(prior)

	var merged []models.Entry

	switch {
	case snap.Primary == nil:
		// No history log on disk; cached history entries, if any, are gone.
		if prior != nil && prior.Meta.History != nil {
			indexLog.Debug("history_log_removed")
		}
	case prior != nil && prior.Meta.History != nil && prior.Meta.History.Matches(*snap.Primary):
		meta.History = prior.Meta.History
		merged = append(merged, byOrigin[""]...)
	default:
		entries, err := parsePrimary(snap.HistoryPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to index history log: %w", err)
		}
		fp := *snap.Primary
		fp.MaxTimestamp = maxTimestamp(entries)
		meta.History = &fp
		merged = append(merged, entries...)
	}

	for _, id := range sortedProjectIDs(snap.Projects) {
		current := snap.Projects[id]

		if prior != nil {
			if cached, ok := prior.Meta.Projects[id]; ok && cached.Matches(current) {
				meta.Projects[id] = cached
				merged = append(merged, byOrigin[id]...)
				continue
			}
		}

		entries, err := parseProject(snap.Infos[id])
		if err != nil {
			indexLog.Warn("project_parse_failed",
				slog.String("project", id),
				slog.String("error", err.Error()))
			continue
		}
		for i := range entries {
			entries[i].Origin = id
		}
		current.MaxTimestamp = maxTimestamp(entries)
		meta.Projects[id] = current
		merged = append(merged, entries...)
	}

	// A single full sort after the merge is the ordering contract; reparsed
	// projects can touch arbitrary timestamp ranges, so nothing incremental
	// would be safe. Stable sort plus the fixed concatenation order above
	// keeps ties deterministic across runs.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})

	return meta, merged, nil
}

func groupByOrigin(prior *Prior) map[string][]models.Entry {
	grouped := make(map[string][]models.Entry)
	if prior == nil {
		return grouped
	}
	for _, e := range prior.Entries {
		grouped[e.Origin] = append(grouped[e.Origin], e)
	}
	return grouped
}

func sortedProjectIDs(projects map[string]scanner.ProjectFingerprint) []string {
	ids := make([]string, 0, len(projects))
	for id := range projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func maxTimestamp(entries []models.Entry) *time.Time {
	var max time.Time
	for _, e := range entries {
		if e.Timestamp.After(max) {
			max = e.Timestamp
		}
	}
	if max.IsZero() {
		return nil
	}
	return &max
}
