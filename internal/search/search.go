package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/pcarlton/histx/internal/filter"
	"github.com/pcarlton/histx/internal/models"
)

// Result is one entry matched by a query, with its fuzzy score and the
// byte offsets of matched characters for highlighting.
type Result struct {
	Entry          models.Entry
	Score          int
	MatchedIndexes []int
}

// Searcher ranks an immutable entry snapshot against queries. The snapshot
// is already sorted newest-first, which Search preserves for empty queries.
type Searcher struct {
	entries []models.Entry
}

func NewSearcher(entries []models.Entry) *Searcher {
	return &Searcher{entries: entries}
}

// Entries returns the underlying snapshot.
func (s *Searcher) Entries() []models.Entry {
	return s.entries
}

// Search fuzzy-matches query against entry text, best score first. An empty
// query returns entries in index order. A nil expr applies no filtering.
// limit <= 0 means unlimited.
func (s *Searcher) Search(query string, expr *filter.Expr, limit int) []Result {
	candidates := filter.Apply(s.entries, expr)

	var results []Result
	if query == "" {
		results = make([]Result, 0, len(candidates))
		for _, e := range candidates {
			results = append(results, Result{Entry: e})
		}
	} else {
		matches := fuzzy.FindFrom(query, entrySource(candidates))
		results = make([]Result, 0, len(matches))
		for _, m := range matches {
			results = append(results, Result{
				Entry:          candidates[m.Index],
				Score:          m.Score,
				MatchedIndexes: m.MatchedIndexes,
			})
		}
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// entrySource adapts an entry slice to fuzzy.Source.
type entrySource []models.Entry

func (s entrySource) String(i int) string { return s[i].Text }
func (s entrySource) Len() int            { return len(s) }
