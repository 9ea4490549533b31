package parser

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pcarlton/histx/internal/models"
)

func TestStripANSI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"\x1b[31mred\x1b[0m", "red"},
		{"\x1b[1;32mbold green\x1b[0m end", "bold green end"},
		{"\x1b]0;title\x07body", "body"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripANSI(tt.in); got != tt.want {
			t.Errorf("StripANSI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractText_PlainString(t *testing.T) {
	c := models.MessageContent{Text: "just a string"}
	if got := ExtractText(c); got != "just a string" {
		t.Errorf("ExtractText() = %q", got)
	}
}

func TestExtractText_Blocks(t *testing.T) {
	c := models.MessageContent{Blocks: []models.ContentBlock{
		{Type: "text", Text: "visible"},
		{Type: "thinking", Thinking: "pondering"},
		{Type: "tool_use", Name: "Bash", Input: json.RawMessage(`{"cmd": "ls"}`)},
		{Type: "tool_result", Content: json.RawMessage(`"done"`)},
		{Type: "image", AltText: "a chart"},
		{Type: "unknown_block"},
	}}

	got := ExtractText(c)
	wantParts := []string{
		"visible",
		"[Thinking] pondering",
		`[Tool: Bash] Input: {"cmd":"ls"}`,
		`[Tool Result] "done"`,
		"[Image] a chart",
	}
	if got != strings.Join(wantParts, "\n") {
		t.Errorf("ExtractText() = %q", got)
	}
}

func TestExtractText_TruncatesThinking(t *testing.T) {
	long := strings.Repeat("x", maxThinkingContent+500)
	c := models.MessageContent{Blocks: []models.ContentBlock{
		{Type: "thinking", Thinking: long},
	}}

	got := ExtractText(c)
	if !strings.HasPrefix(got, "[Thinking][truncated] ") {
		t.Errorf("ExtractText() = %q, want truncation marker", got[:40])
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("ExtractText() missing ellipsis")
	}
	if len(got) > maxThinkingContent+len("[Thinking][truncated] ")+len("...") {
		t.Errorf("ExtractText() length = %d, exceeds limit", len(got))
	}
}

func TestExtractText_TruncatesToolInput(t *testing.T) {
	big := `{"data":"` + strings.Repeat("y", maxToolContent+100) + `"}`
	c := models.MessageContent{Blocks: []models.ContentBlock{
		{Type: "tool_use", Name: "Write", Input: json.RawMessage(big)},
	}}

	got := ExtractText(c)
	if !strings.HasPrefix(got, "[Tool: Write][truncated] Input: ") {
		t.Errorf("ExtractText() = %q, want truncation marker", got[:40])
	}
}

func TestExtractText_InvalidToolJSON(t *testing.T) {
	c := models.MessageContent{Blocks: []models.ContentBlock{
		{Type: "tool_result", Content: json.RawMessage(`{broken`)},
	}}
	if got := ExtractText(c); got != "[Tool Result] [serialization error]" {
		t.Errorf("ExtractText() = %q", got)
	}
}

func TestExtractText_SkipsEmptyBlocks(t *testing.T) {
	c := models.MessageContent{Blocks: []models.ContentBlock{
		{Type: "text", Text: ""},
		{Type: "image"},
		{Type: "text", Text: "only this"},
	}}
	if got := ExtractText(c); got != "only this" {
		t.Errorf("ExtractText() = %q", got)
	}
}

func TestTruncateAtRuneBoundary(t *testing.T) {
	if got := truncateAtRuneBoundary("hello", 10); got != "hello" {
		t.Errorf("truncateAtRuneBoundary() = %q", got)
	}
	if got := truncateAtRuneBoundary("hello", 3); got != "hel" {
		t.Errorf("truncateAtRuneBoundary() = %q", got)
	}
	// Never split a multibyte rune.
	s := "naïve" // ï is two bytes starting at index 2
	got := truncateAtRuneBoundary(s, 3)
	if got != "na" {
		t.Errorf("truncateAtRuneBoundary(%q, 3) = %q, want %q", s, got, "na")
	}
}
