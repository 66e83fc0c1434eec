package normalize

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseColumnIdentifier(t *testing.T) {
	tests := []struct {
		in   Identifier
		want int
	}{
		{LabelID("a"), 1},
		{LabelID("z"), 26},
		{LabelID("aa"), 27},
		{LabelID("ab"), 28},
		{LabelID("AB"), 28},
		{LabelID(" zz "), 702},
		{LabelID("a.a"), 27},
		{IndexID(7), 7},
	}
	for _, tt := range tests {
		got, err := ParseColumnIdentifier(tt.in)
		if err != nil {
			t.Fatalf("ParseColumnIdentifier(%v): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseColumnIdentifier(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseColumnIdentifier_Invalid(t *testing.T) {
	for _, in := range []string{"a1", "", "é", "a-b"} {
		if _, err := ParseColumnIdentifier(LabelID(in)); !errors.Is(err, ErrInvalidIdentifier) {
			t.Fatalf("%q: expected ErrInvalidIdentifier, got %v", in, err)
		}
	}
}

func TestIdentifierFromValue_WrongType(t *testing.T) {
	if _, err := IdentifierFromValue(true); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
	if _, err := IdentifierFromValue(1.5); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}

	id, err := IdentifierFromValue(float64(3))
	if err != nil || !id.IsIndex() || id.Index() != 3 {
		t.Fatalf("unexpected: %#v err=%v", id, err)
	}
}

func TestIdentifier_UnmarshalJSON(t *testing.T) {
	var ids []Identifier
	if err := json.Unmarshal([]byte(`[2, "Sheet1"]`), &ids); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(ids) != 2 || !ids[0].Matches(2, "") || !ids[1].Matches(9, "Sheet1") {
		t.Fatalf("unexpected: %#v", ids)
	}

	var bad Identifier
	if err := json.Unmarshal([]byte(`false`), &bad); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}

func TestColumnLettersRoundTrip(t *testing.T) {
	for col := 1; col <= 2000; col++ {
		letters, err := ColumnLetters(col)
		if err != nil {
			t.Fatalf("ColumnLetters(%d): %v", col, err)
		}
		got, err := ParseColumnIdentifier(LabelID(letters))
		if err != nil {
			t.Fatalf("ParseColumnIdentifier(%q): %v", letters, err)
		}
		if got != col {
			t.Fatalf("round trip %d -> %q -> %d", col, letters, got)
		}
	}

	if got, _ := ColumnLetters(28); got != "AB" {
		t.Fatalf("unexpected: %q", got)
	}
	if _, err := ColumnLetters(0); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected error for 0")
	}
}
