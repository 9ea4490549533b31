package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Timestamp accepts both Unix-millisecond integers and RFC3339 strings, the
// two encodings Claude Code has used in its log files.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("timestamp is missing")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid RFC3339 timestamp: %w", err)
		}
		t.Time = parsed.UTC()
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("timestamp must be a number or string: %w", err)
	}
	t.Time = time.UnixMilli(ms).UTC()
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UnixMilli())
}

// SessionID is a UUID string. Decoding rejects empty or malformed values so
// a corrupted log line fails the whole line instead of producing a bogus key.
type SessionID string

func (s *SessionID) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		return fmt.Errorf("session ID cannot be empty")
	}
	if _, err := uuid.Parse(raw); err != nil {
		return fmt.Errorf("invalid UUID format for session ID: %w", err)
	}
	*s = SessionID(raw)
	return nil
}

// HistoryEntry is one line of history.jsonl: a prompt the user submitted.
type HistoryEntry struct {
	Display   string    `json:"display"`
	Timestamp Timestamp `json:"timestamp"`
	Project   string    `json:"project,omitempty"`
	SessionID SessionID `json:"sessionId"`
}

// ConversationEntry is one user or assistant line of a project conversation
// file. Other line types (summaries, snapshots, system events) are filtered
// out before decoding.
type ConversationEntry struct {
	Type        string    `json:"type"`
	Message     Message   `json:"message"`
	Timestamp   Timestamp `json:"timestamp"`
	SessionID   SessionID `json:"sessionId"`
	UUID        string    `json:"uuid"`
	ParentUUID  string    `json:"parent_uuid,omitempty"`
	IsSidechain *bool     `json:"is_sidechain,omitempty"`
}

type Message struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

// MessageContent is either a plain string or a list of typed content blocks.
type MessageContent struct {
	Text   string
	Blocks []ContentBlock
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		return nil
	}
	var blocks []ContentBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return fmt.Errorf("content must be a string or block array: %w", err)
	}
	c.Blocks = blocks
	return nil
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.Blocks != nil {
		return json.Marshal(c.Blocks)
	}
	return json.Marshal(c.Text)
}

// ContentBlock is one element of a block-array message content. The Type tag
// decides which of the other fields are meaningful.
type ContentBlock struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	Thinking string          `json:"thinking,omitempty"`
	Name     string          `json:"name,omitempty"`
	Input    json.RawMessage `json:"input,omitempty"`
	Content  json.RawMessage `json:"content,omitempty"`
	AltText  string          `json:"alt_text,omitempty"`
}
