package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestamp_UnmarshalMilliseconds(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte("1755000000000"), &ts); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := time.UnixMilli(1755000000000).UTC()
	if !ts.Time.Equal(want) {
		t.Errorf("Unmarshal() = %v, want %v", ts.Time, want)
	}
}

func TestTimestamp_UnmarshalRFC3339(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"2026-08-15T10:30:00Z"`), &ts); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
	if !ts.Time.Equal(want) {
		t.Errorf("Unmarshal() = %v, want %v", ts.Time, want)
	}
}

func TestTimestamp_UnmarshalInvalid(t *testing.T) {
	inputs := []string{`"not a date"`, `null`, `true`, `{}`}
	for _, input := range inputs {
		var ts Timestamp
		if err := json.Unmarshal([]byte(input), &ts); err == nil {
			t.Errorf("Unmarshal(%s) expected error", input)
		}
	}
}

func TestTimestamp_MarshalRoundTrip(t *testing.T) {
	orig := Timestamp{Time: time.UnixMilli(1755000000123).UTC()}
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var back Timestamp
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !back.Time.Equal(orig.Time) {
		t.Errorf("round trip = %v, want %v", back.Time, orig.Time)
	}
}

func TestSessionID_Unmarshal(t *testing.T) {
	var id SessionID
	if err := json.Unmarshal([]byte(`"b7e9c8a0-1234-4f6a-9c3d-2e5f8a7b6c5d"`), &id); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if id != "b7e9c8a0-1234-4f6a-9c3d-2e5f8a7b6c5d" {
		t.Errorf("Unmarshal() = %q", id)
	}

	for _, input := range []string{`""`, `"not-a-uuid"`, `123`} {
		var bad SessionID
		if err := json.Unmarshal([]byte(input), &bad); err == nil {
			t.Errorf("Unmarshal(%s) expected error", input)
		}
	}
}

func TestMessageContent_String(t *testing.T) {
	var c MessageContent
	if err := json.Unmarshal([]byte(`"plain text"`), &c); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if c.Text != "plain text" || c.Blocks != nil {
		t.Errorf("Unmarshal() = %+v", c)
	}
}

func TestMessageContent_Blocks(t *testing.T) {
	raw := `[{"type":"text","text":"hi"},{"type":"tool_use","name":"Bash","input":{"cmd":"ls"}}]`
	var c MessageContent
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(c.Blocks) != 2 {
		t.Fatalf("Unmarshal() = %d blocks, want 2", len(c.Blocks))
	}
	if c.Blocks[0].Type != "text" || c.Blocks[0].Text != "hi" {
		t.Errorf("block 0 = %+v", c.Blocks[0])
	}
	if c.Blocks[1].Name != "Bash" || len(c.Blocks[1].Input) == 0 {
		t.Errorf("block 1 = %+v", c.Blocks[1])
	}
}

func TestMessageContent_Invalid(t *testing.T) {
	var c MessageContent
	if err := json.Unmarshal([]byte(`42`), &c); err == nil {
		t.Error("Unmarshal(42) expected error")
	}
}

func TestHistoryEntry_Decode(t *testing.T) {
	raw := `{"display":"fix the bug","timestamp":1755000000000,"project":"/home/u/proj","sessionId":"b7e9c8a0-1234-4f6a-9c3d-2e5f8a7b6c5d"}`
	var e HistoryEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if e.Display != "fix the bug" || e.Project != "/home/u/proj" {
		t.Errorf("Unmarshal() = %+v", e)
	}
}
