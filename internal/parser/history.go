package parser

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pcarlton/histx/internal/logging"
	"github.com/pcarlton/histx/internal/models"
)

var parseLog = logging.ForComponent(logging.CompParser)

const (
	// maxFileSize caps JSONL files at 10MB; anything larger is rejected.
	maxFileSize = 10 * 1024 * 1024

	// maxConsecutiveErrors aborts a file after this many bad lines in a row.
	maxConsecutiveErrors = 100

	// maxLineSize bounds a single JSONL line for the bufio scanner.
	maxLineSize = 1024 * 1024
)

// ParseHistoryFile reads history.jsonl and returns its entries. Malformed
// lines are logged and skipped; the file as a whole fails when more than half
// its lines fail or when 100 consecutive lines fail.
func ParseHistoryFile(path string) ([]models.HistoryEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file %s: %w", path, err)
	}
	defer f.Close()
	if err := validateFileSize(f, path); err != nil {
		return nil, err
	}

	var (
		entries     []models.HistoryEntry
		skipped     int
		totalLines  int
		consecutive int
		lineNum     int
	)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		lineNum++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		totalLines++

		var entry models.HistoryEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			parseLog.Warn("history_line_skipped",
				slog.Int("line", lineNum),
				slog.String("error", err.Error()))
			skipped++
			consecutive++
			if consecutive >= maxConsecutiveErrors {
				return nil, fmt.Errorf("%d consecutive parse errors in %s, file may be corrupted", consecutive, path)
			}
			continue
		}
		entries = append(entries, entry)
		consecutive = 0
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := checkFailureRate(path, skipped, totalLines); err != nil {
		return nil, err
	}
	return entries, nil
}

// ParsePrimary parses the history log into index entries: ANSI escapes are
// stripped, whitespace-only prompts dropped, and project paths validated.
func ParsePrimary(path string) ([]models.Entry, error) {
	raw, err := ParseHistoryFile(path)
	if err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(raw))
	for _, h := range raw {
		text := StripANSI(h.Display)
		if strings.TrimSpace(text) == "" {
			continue
		}
		project := h.Project
		if project != "" && !validProjectPath(project) {
			parseLog.Warn("history_project_path_rejected", slog.String("path", project))
			project = ""
		}
		entries = append(entries, models.Entry{
			Type:        models.EntryUserPrompt,
			Text:        text,
			Timestamp:   h.Timestamp.Time,
			ProjectPath: project,
			SessionID:   string(h.SessionID),
		})
	}
	return entries, nil
}

// validProjectPath rejects relative paths and paths with ".." components,
// which could otherwise surface misleading locations in search results.
func validProjectPath(path string) bool {
	if !filepath.IsAbs(path) {
		return false
	}
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return false
		}
	}
	return true
}

func validateFileSize(f *os.File, path string) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > maxFileSize {
		return fmt.Errorf("file too large: %s (%d bytes, max %d)", path, info.Size(), maxFileSize)
	}
	return nil
}

func checkFailureRate(path string, skipped, total int) error {
	if total == 0 || skipped*2 <= total {
		if skipped > 0 {
			parseLog.Info("parse_partial",
				slog.String("path", path),
				slog.Int("skipped", skipped),
				slog.Int("total", total))
		}
		return nil
	}
	return fmt.Errorf("too many parse failures in %s: %d of %d lines failed", path, skipped, total)
}
