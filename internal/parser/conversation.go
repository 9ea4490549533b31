package parser

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pcarlton/histx/internal/models"
)

// ParseConversationFile reads one project conversation JSONL file. Only user
// and assistant lines are decoded; snapshot, summary, and system lines are
// silently skipped. The same failure thresholds as the history parser apply.
func ParseConversationFile(path string) ([]models.ConversationEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation file %s: %w", path, err)
	}
	defer f.Close()
	if err := validateFileSize(f, path); err != nil {
		return nil, err
	}

	var (
		entries     []models.ConversationEntry
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

		// Peek at the type tag before committing to a full decode.
		var tag struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(line), &tag); err != nil {
			parseLog.Warn("conversation_line_skipped",
				slog.String("path", path),
				slog.Int("line", lineNum),
				slog.String("error", err.Error()))
			skipped++
			consecutive++
			if consecutive >= maxConsecutiveErrors {
				return nil, fmt.Errorf("%d consecutive parse errors in %s, file may be corrupted", consecutive, path)
			}
			continue
		}
		if tag.Type != "user" && tag.Type != "assistant" {
			continue
		}

		var entry models.ConversationEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			parseLog.Warn("conversation_line_skipped",
				slog.String("path", path),
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

// ParseProject parses every conversation file of a project into index
// entries. Individual file failures are logged and tolerated up to half the
// project's files; beyond that the whole project fails.
func ParseProject(info models.ProjectInfo) ([]models.Entry, error) {
	var (
		entries []models.Entry
		failed  int
	)
	for _, path := range info.ConversationFiles {
		raw, err := ParseConversationFile(path)
		if err != nil {
			parseLog.Warn("conversation_file_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			failed++
			continue
		}
		entries = append(entries, conversationEntries(raw, info.DecodedPath)...)
	}

	if total := len(info.ConversationFiles); total > 0 && failed*2 > total {
		return nil, fmt.Errorf("project %s: %d of %d conversation files failed to parse",
			info.EncodedName, failed, total)
	}
	return entries, nil
}

func conversationEntries(raw []models.ConversationEntry, projectPath string) []models.Entry {
	var entries []models.Entry
	for _, c := range raw {
		role := c.Message.Role
		if role != "user" && role != "assistant" {
			continue
		}
		text := ExtractText(c.Message.Content)
		if strings.TrimSpace(text) == "" {
			continue
		}
		entryType := models.EntryUserPrompt
		if role == "assistant" {
			entryType = models.EntryAgentMessage
		}
		entries = append(entries, models.Entry{
			Type:        entryType,
			Text:        text,
			Timestamp:   c.Timestamp.Time,
			ProjectPath: projectPath,
			SessionID:   string(c.SessionID),
		})
	}
	return entries
}
