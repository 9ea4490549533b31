package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pcarlton/histx/internal/models"
)

const (
	// maxThinkingContent bounds thinking blocks and image alt text; internal
	// reasoning only needs to be skimmable in search results.
	maxThinkingContent = 1024

	// maxToolContent bounds serialized tool inputs and results.
	maxToolContent = 4096
)

var ansiPattern = regexp.MustCompile(`\x1b(?:\[[0-9;?]*[a-zA-Z]|\][^\x07\x1b]*(?:\x07|\x1b\\)|[()][A-Z0-9])`)

// StripANSI removes terminal escape sequences so logged content cannot
// inject control codes into the rendered output.
func StripANSI(s string) string {
	if !strings.ContainsRune(s, '\x1b') {
		return s
	}
	return ansiPattern.ReplaceAllString(s, "")
}

// ExtractText flattens message content into a single searchable string.
// Plain string content passes through; block arrays are joined with
// newlines. Thinking, tool, and image blocks get a bracketed prefix and are
// truncated to keep pathological inputs from bloating the index.
func ExtractText(content models.MessageContent) string {
	if content.Blocks == nil {
		return StripANSI(content.Text)
	}

	var parts []string
	for _, block := range content.Blocks {
		switch block.Type {
		case "text":
			if block.Text != "" {
				parts = append(parts, block.Text)
			}
		case "thinking":
			parts = append(parts, clipped("[Thinking]", "", block.Thinking, maxThinkingContent))
		case "tool_use":
			parts = append(parts, clipped(fmt.Sprintf("[Tool: %s]", block.Name), " Input:", compactJSON(block.Input), maxToolContent))
		case "tool_result":
			parts = append(parts, clipped("[Tool Result]", "", compactJSON(block.Content), maxToolContent))
		case "image":
			if block.AltText != "" {
				parts = append(parts, clipped("[Image]", "", block.AltText, maxThinkingContent))
			}
		}
	}
	return StripANSI(strings.Join(parts, "\n"))
}

// clipped renders "<tag><suffix> <body>", truncating body at a rune boundary
// and marking the truncation when it exceeds maxBytes.
func clipped(tag, suffix, body string, maxBytes int) string {
	short := truncateAtRuneBoundary(body, maxBytes)
	if len(short) < len(body) {
		return tag + "[truncated]" + suffix + " " + short + "..."
	}
	return tag + suffix + " " + body
}

// compactJSON renders a raw JSON value in compact form. Inputs are already
// bounded by the per-line scanner limit; clipped handles the final cap.
func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "[serialization error]"
	}
	return buf.String()
}

// truncateAtRuneBoundary shortens s to at most maxBytes bytes without
// splitting a multibyte rune.
func truncateAtRuneBoundary(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
