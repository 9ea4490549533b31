package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pcarlton/histx/internal/filter"
	"github.com/pcarlton/histx/internal/models"
	"github.com/pcarlton/histx/internal/search"
)

// Index is one built snapshot of the history index.
type Index struct {
	Entries []models.Entry
	BuiltAt time.Time
}

// BuildFunc produces a fresh Index from disk.
type BuildFunc func() (Index, error)

// indexTTL bounds how stale a served snapshot may be before the next
// request triggers a rebuild. Rebuilds are cheap: the cache reuses every
// unchanged source.
const indexTTL = 30 * time.Second

type Handlers struct {
	build BuildFunc

	mu  sync.Mutex
	idx Index
}

func NewHandlers(build BuildFunc) *Handlers {
	return &Handlers{build: build}
}

// index returns the current snapshot, rebuilding when it has expired.
func (h *Handlers) index() (Index, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if time.Since(h.idx.BuiltAt) < indexTTL {
		return h.idx, nil
	}
	idx, err := h.build()
	if err != nil {
		return Index{}, err
	}
	h.idx = idx
	return idx, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

// Search handles GET /search?q=...&filter=...&limit=N.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	limit := 50
	if l := params.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	expr, err := filter.Parse(params.Get("filter"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	idx, err := h.index()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	results := search.NewSearcher(idx.Entries).Search(params.Get("q"), expr, limit)

	type resultJSON struct {
		Type        models.EntryType `json:"type"`
		Text        string           `json:"text"`
		Timestamp   time.Time        `json:"timestamp"`
		ProjectPath string           `json:"project_path,omitempty"`
		SessionID   string           `json:"session_id,omitempty"`
		Score       int              `json:"score"`
	}
	out := make([]resultJSON, 0, len(results))
	for _, res := range results {
		out = append(out, resultJSON{
			Type:        res.Entry.Type,
			Text:        res.Entry.Text,
			Timestamp:   res.Entry.Timestamp,
			ProjectPath: res.Entry.ProjectPath,
			SessionID:   res.Entry.SessionID,
			Score:       res.Score,
		})
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": out,
		"count":   len(out),
	})
}

// Stats handles GET /stats.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	idx, err := h.index()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var prompts, messages int
	projects := make(map[string]int)
	for _, e := range idx.Entries {
		switch e.Type {
		case models.EntryUserPrompt:
			prompts++
		case models.EntryAgentMessage:
			messages++
		}
		if e.ProjectPath != "" {
			projects[e.ProjectPath]++
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"total_entries":  len(idx.Entries),
		"user_prompts":   prompts,
		"agent_messages": messages,
		"projects":       projects,
		"built_at":       idx.BuiltAt,
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
