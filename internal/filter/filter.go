// Package filter parses and evaluates search filter expressions.
//
// Syntax: space-separated field:value conditions, optionally joined by AND
// or OR keywords (case-insensitive). Values with spaces are double-quoted.
// Without an explicit operator, conditions on the same field are OR'd and
// conditions on different fields are AND'd, so `project:foo project:bar
// type:user` means (foo OR bar) AND user. Evaluation is left to right; there
// are no parentheses.
//
// Fields:
//
//	project:path        case-insensitive substring match, ~ expands to $HOME
//	type:user|agent     entry type
//	since:YYYY-MM-DD    timestamp on or after the date (midnight UTC)
package filter

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pcarlton/histx/internal/models"
)

// Field names an entry attribute a condition tests.
type Field int

const (
	FieldProject Field = iota
	FieldType
	FieldSince
)

func (f Field) String() string {
	switch f {
	case FieldProject:
		return "project"
	case FieldType:
		return "type"
	case FieldSince:
		return "since"
	}
	return "unknown"
}

// Operator joins two adjacent conditions.
type Operator int

const (
	OpAnd Operator = iota
	OpOr
)

// Condition is one field:value test.
type Condition struct {
	Field Field
	Value string
}

// Expr is a parsed filter: n conditions joined by n-1 operators, evaluated
// left to right.
type Expr struct {
	Conditions []Condition
	Operators  []Operator
}

// Empty reports whether the expression matches everything.
func (e *Expr) Empty() bool {
	return len(e.Conditions) == 0
}

type token struct {
	field    string
	value    string
	operator string // "AND" or "OR"; empty for field:value tokens
}

// Parse turns a filter string into an Expr. An empty or all-whitespace
// input parses to an empty expression.
func Parse(input string) (*Expr, error) {
	expr := &Expr{}
	if strings.TrimSpace(input) == "" {
		return expr, nil
	}

	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}

	expectingCondition := true
	var lastField Field
	for _, tok := range tokens {
		if tok.operator != "" {
			if expectingCondition {
				return nil, fmt.Errorf("unexpected %s operator, expected field:value", tok.operator)
			}
			if tok.operator == "AND" {
				expr.Operators = append(expr.Operators, OpAnd)
			} else {
				expr.Operators = append(expr.Operators, OpOr)
			}
			expectingCondition = true
			continue
		}

		field, err := parseField(tok.field)
		if err != nil {
			return nil, err
		}
		if err := validateValue(field, tok.value); err != nil {
			return nil, err
		}

		// No explicit operator before this condition: OR for a repeated
		// field, AND otherwise.
		if !expectingCondition {
			if field == lastField {
				expr.Operators = append(expr.Operators, OpOr)
			} else {
				expr.Operators = append(expr.Operators, OpAnd)
			}
		}

		expr.Conditions = append(expr.Conditions, Condition{Field: field, Value: tok.value})
		lastField = field
		expectingCondition = false
	}

	if expectingCondition {
		return nil, fmt.Errorf("filter ends with an operator, expected field:value")
	}
	return expr, nil
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		if input[i] == ' ' || input[i] == '\t' {
			i++
			continue
		}

		word, rest, err := readWord(input[i:])
		if err != nil {
			return nil, err
		}
		i = len(input) - len(rest)

		switch strings.ToUpper(word) {
		case "AND", "OR":
			tokens = append(tokens, token{operator: strings.ToUpper(word)})
			continue
		}

		colon := strings.IndexByte(word, ':')
		if colon < 0 {
			return nil, fmt.Errorf("invalid token %q, expected field:value or AND/OR", word)
		}
		field, value := word[:colon], word[colon+1:]
		if field == "" || value == "" {
			return nil, fmt.Errorf("invalid field:value format: %q", word)
		}
		tokens = append(tokens, token{field: field, value: value})
	}
	return tokens, nil
}

// readWord consumes one token from the front of s, honoring a double-quoted
// section after a field's colon so values can contain spaces. It returns the
// word with quotes removed and the unconsumed remainder.
func readWord(s string) (string, string, error) {
	var b strings.Builder
	inQuotes := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			if inQuotes {
				return b.String(), s[i+1:], nil
			}
			inQuotes = true
			continue
		}
		if !inQuotes && (c == ' ' || c == '\t') {
			return b.String(), s[i:], nil
		}
		b.WriteByte(c)
	}
	if inQuotes {
		return "", "", fmt.Errorf("unterminated quoted string in filter")
	}
	return b.String(), "", nil
}

func parseField(name string) (Field, error) {
	switch strings.ToLower(name) {
	case "project":
		return FieldProject, nil
	case "type":
		return FieldType, nil
	case "since":
		return FieldSince, nil
	}
	return 0, fmt.Errorf("unknown field %q, valid fields: project, type, since", name)
}

func validateValue(field Field, value string) error {
	switch field {
	case FieldType:
		switch strings.ToLower(value) {
		case "user", "agent":
			return nil
		}
		return fmt.Errorf("invalid type value %q, must be 'user' or 'agent'", value)
	case FieldSince:
		if _, err := parseDate(value); err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
		}
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if len(s) != len("2006-01-02") {
		return time.Time{}, fmt.Errorf("wrong length for date %q", s)
	}
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

// Apply returns the entries matching the expression, preserving order.
func Apply(entries []models.Entry, expr *Expr) []models.Entry {
	if expr == nil || expr.Empty() {
		return entries
	}
	matched := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if expr.Matches(e) {
			matched = append(matched, e)
		}
	}
	return matched
}

// Matches evaluates the expression against one entry, left to right.
func (e *Expr) Matches(entry models.Entry) bool {
	if e.Empty() {
		return true
	}
	result := matchCondition(entry, e.Conditions[0])
	for i, op := range e.Operators {
		next := matchCondition(entry, e.Conditions[i+1])
		if op == OpAnd {
			result = result && next
		} else {
			result = result || next
		}
	}
	return result
}

func matchCondition(entry models.Entry, cond Condition) bool {
	switch cond.Field {
	case FieldProject:
		return matchProject(entry, cond.Value)
	case FieldType:
		return matchType(entry, cond.Value)
	case FieldSince:
		return matchSince(entry, cond.Value)
	}
	return false
}

func matchProject(entry models.Entry, value string) bool {
	if entry.ProjectPath == "" {
		return false
	}
	want := strings.ToLower(value)
	if strings.HasPrefix(want, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			want = strings.ToLower(home) + want[1:]
		}
	}
	return strings.Contains(strings.ToLower(entry.ProjectPath), want)
}

func matchType(entry models.Entry, value string) bool {
	switch strings.ToLower(value) {
	case "user":
		return entry.Type == models.EntryUserPrompt
	case "agent":
		return entry.Type == models.EntryAgentMessage
	}
	return false
}

func matchSince(entry models.Entry, value string) bool {
	date, err := parseDate(value)
	if err != nil {
		return false
	}
	return !entry.Timestamp.Before(date)
}
