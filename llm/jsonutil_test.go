package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRepairObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "clean object passes through",
			input: `{"a":1}`,
			want:  `{"a":1}`,
		},
		{
			name:  "object wrapped in prose",
			input: `Sure, here is the result: {"a":1} hope that helps`,
			want:  `{"a":1}`,
		},
		{
			name:  "fenced object with trailing comma",
			input: "Here you go: ```json {\"a\":1,} ```",
			want:  `{"a":1}`,
		},
		{
			name:  "plain fence without language tag",
			input: "```\n{\"ok\": true}\n```",
			want:  `{"ok": true}`,
		},
		{
			name:  "trailing comma in array",
			input: `{"items": [1, 2, 3,]}`,
			want:  `{"items": [1, 2, 3]}`,
		},
		{
			name:  "adjacent objects joined",
			input: `{"items": [{"a":1} {"b":2}]}`,
			want:  `{"items": [{"a":1},{"b":2}]}`,
		},
		{
			name:  "adjacent arrays joined",
			input: `{"rows": [[1] [2]]}`,
			want:  `{"rows": [[1],[2]]}`,
		},
		{
			name:  "line comment stripped",
			input: "{\n\"a\": 1 // the answer\n}",
			want:  "{\n\"a\": 1\n}",
		},
		{
			name:  "url survives comment stripping",
			input: `{"url": "http://example.com"}`,
			want:  `{"url": "http://example.com"}`,
		},
		{
			name:  "control characters removed",
			input: "{\"a\": \"x\x01y\"}",
			want:  `{"a": "xy"}`,
		},
		{
			name:  "second candidate parses",
			input: `{"broken": } and then {"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:    "no object at all",
			input:   "I could not produce the requested output.",
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "unparseable braces",
			input:   `{{{not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RepairObject(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoStructuredResult) {
					t.Fatalf("RepairObject(%q) error = %v, want ErrNoStructuredResult", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("RepairObject(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("RepairObject(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if !json.Valid([]byte(got)) {
				t.Errorf("RepairObject(%q) produced invalid JSON %q", tt.input, got)
			}
		})
	}
}

func TestDecodeObject(t *testing.T) {
	var out struct {
		A int `json:"a"`
	}

	if err := DecodeObject("Here you go: ```json {\"a\":1,} ```", &out); err != nil {
		t.Fatalf("DecodeObject error: %v", err)
	}
	if out.A != 1 {
		t.Errorf("decoded a = %d, want 1", out.A)
	}

	if err := DecodeObject("nothing here", &out); !errors.Is(err, ErrNoStructuredResult) {
		t.Errorf("DecodeObject on prose = %v, want ErrNoStructuredResult", err)
	}
}

func TestBalancedObjects(t *testing.T) {
	input := `first {"a": "with } brace"} then {"b": {"nested": 2}}`
	got := balancedObjects(input)
	if len(got) != 2 {
		t.Fatalf("balancedObjects found %d candidates, want 2: %v", len(got), got)
	}
	if got[0] != `{"a": "with } brace"}` {
		t.Errorf("first candidate = %q", got[0])
	}
	if got[1] != `{"b": {"nested": 2}}` {
		t.Errorf("second candidate = %q", got[1])
	}
}

func TestTruncatePrompt(t *testing.T) {
	short := "short text"
	if got := TruncatePrompt(short); got != short {
		t.Errorf("short text should pass through, got %q", got)
	}

	long := make([]byte, maxPromptChars+100)
	for i := range long {
		long[i] = 'x'
	}
	got := TruncatePrompt(string(long))
	if len(got) != maxPromptChars+len(truncationMarker) {
		t.Errorf("truncated length = %d, want %d", len(got), maxPromptChars+len(truncationMarker))
	}
	if got[len(got)-len(truncationMarker):] != truncationMarker {
		t.Error("truncated text missing marker")
	}
}
