package models

import (
	"time"
)

// EntryType distinguishes where an indexed entry came from.
type EntryType string

const (
	// EntryUserPrompt is a prompt the user typed, either from history.jsonl
	// or from a conversation file.
	EntryUserPrompt EntryType = "user_prompt"
	// EntryAgentMessage is an assistant reply from a conversation file.
	EntryAgentMessage EntryType = "agent_message"
)

// Entry is one searchable unit of conversation history. The index as a whole
// is kept sorted by Timestamp, newest first.
type Entry struct {
	Type        EntryType `json:"type"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	ProjectPath string    `json:"project_path,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`

	// Origin identifies the source the entry was parsed from: empty for the
	// history log, otherwise the encoded project directory name. The index
	// uses it to reuse or replace entries per source without reparsing.
	Origin string `json:"origin,omitempty"`
}

// ProjectInfo describes one discovered project directory under
// ~/.claude/projects and the conversation files found inside it.
type ProjectInfo struct {
	EncodedName       string
	DecodedPath       string
	Dir               string
	ConversationFiles []string
}
