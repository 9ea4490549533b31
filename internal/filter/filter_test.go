package filter

import (
	"testing"
	"time"

	"github.com/pcarlton/histx/internal/models"
)

func TestParse_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "\t"} {
		expr, err := Parse(input)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", input, err)
			continue
		}
		if !expr.Empty() {
			t.Errorf("Parse(%q) = %+v, want empty", input, expr)
		}
	}
}

func TestParse_SingleCondition(t *testing.T) {
	expr, err := Parse("project:foo")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(expr.Conditions) != 1 || len(expr.Operators) != 0 {
		t.Fatalf("Parse() = %d conditions, %d operators", len(expr.Conditions), len(expr.Operators))
	}
	if expr.Conditions[0].Field != FieldProject || expr.Conditions[0].Value != "foo" {
		t.Errorf("Parse() condition = %+v", expr.Conditions[0])
	}
}

func TestParse_ImplicitOperators(t *testing.T) {
	tests := []struct {
		input string
		want  []Operator
	}{
		{"project:foo type:user", []Operator{OpAnd}},
		{"project:foo project:bar", []Operator{OpOr}},
		{"project:foo AND type:user since:2026-01-01", []Operator{OpAnd, OpAnd}},
		{"type:user OR type:agent", []Operator{OpOr}},
	}
	for _, tt := range tests {
		expr, err := Parse(tt.input)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.input, err)
			continue
		}
		if len(expr.Operators) != len(tt.want) {
			t.Errorf("Parse(%q) = %d operators, want %d", tt.input, len(expr.Operators), len(tt.want))
			continue
		}
		for i, op := range tt.want {
			if expr.Operators[i] != op {
				t.Errorf("Parse(%q) operator %d = %v, want %v", tt.input, i, expr.Operators[i], op)
			}
		}
	}
}

func TestParse_QuotedValue(t *testing.T) {
	expr, err := Parse(`project:"my project"`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if expr.Conditions[0].Value != "my project" {
		t.Errorf("Parse() value = %q, want %q", expr.Conditions[0].Value, "my project")
	}
}

func TestParse_Errors(t *testing.T) {
	inputs := []string{
		"notafield",
		"bogus:value",
		"type:invalid",
		"since:2026-13-01",
		"since:2026-02-31",
		"since:26-01-01",
		"project:foo AND",
		"AND project:foo",
		`project:"unterminated`,
		":value",
		"project:",
	}
	for _, input := range inputs {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) expected error", input)
		}
	}
}

func TestParse_CaseInsensitiveFieldsAndOperators(t *testing.T) {
	expr, err := Parse("PROJECT:foo and TYPE:USER")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(expr.Conditions) != 2 || expr.Operators[0] != OpAnd {
		t.Errorf("Parse() = %+v", expr)
	}
}

func entryAt(ts time.Time, typ models.EntryType, project string) models.Entry {
	return models.Entry{Type: typ, Text: "x", Timestamp: ts, ProjectPath: project}
}

func TestMatches(t *testing.T) {
	ts := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter string
		entry  models.Entry
		want   bool
	}{
		{"project substring", "project:foo", entryAt(ts, models.EntryUserPrompt, "/home/u/foo-bar"), true},
		{"project case insensitive", "project:FOO", entryAt(ts, models.EntryUserPrompt, "/home/u/Foo"), true},
		{"project miss", "project:baz", entryAt(ts, models.EntryUserPrompt, "/home/u/foo"), false},
		{"project none", "project:foo", entryAt(ts, models.EntryUserPrompt, ""), false},
		{"type user", "type:user", entryAt(ts, models.EntryUserPrompt, ""), true},
		{"type agent miss", "type:agent", entryAt(ts, models.EntryUserPrompt, ""), false},
		{"since on boundary", "since:2026-08-15", entryAt(time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), models.EntryUserPrompt, ""), true},
		{"since before", "since:2026-08-16", entryAt(ts, models.EntryUserPrompt, ""), false},
		{"same field or", "project:aaa project:foo", entryAt(ts, models.EntryUserPrompt, "/home/u/foo"), true},
		{"cross field and fails", "project:foo type:agent", entryAt(ts, models.EntryUserPrompt, "/home/u/foo"), false},
		{"explicit or", "type:agent OR since:2026-01-01", entryAt(ts, models.EntryUserPrompt, ""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.filter)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.filter, err)
			}
			if got := expr.Matches(tt.entry); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	ts := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entries := []models.Entry{
		entryAt(ts, models.EntryUserPrompt, "/a"),
		entryAt(ts, models.EntryAgentMessage, "/a"),
		entryAt(ts, models.EntryUserPrompt, "/b"),
	}

	expr, err := Parse("type:user")
	if err != nil {
		t.Fatal(err)
	}
	got := Apply(entries, expr)
	if len(got) != 2 {
		t.Errorf("Apply() returned %d entries, want 2", len(got))
	}

	if got := Apply(entries, nil); len(got) != 3 {
		t.Errorf("Apply(nil expr) returned %d entries, want 3", len(got))
	}
}
