package quiz

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseBlock(t *testing.T) {
	input := "Capital of India?\nNew Delhi ✅\nKolkata\nMadurai\nChennai"
	q, err := ParseBlock(input, DefaultCorrectMarker, DefaultMaxOptions)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.Text != "Capital of India?" {
		t.Fatalf("text = %q", q.Text)
	}
	want := []string{"New Delhi", "Kolkata", "Madurai", "Chennai"}
	if !reflect.DeepEqual(q.Options, want) {
		t.Fatalf("options = %v, want %v", q.Options, want)
	}
	if q.CorrectIndex != 0 {
		t.Fatalf("correct index = %d, want 0", q.CorrectIndex)
	}
}

func TestParseBlockMarkerMidList(t *testing.T) {
	input := "Capital of France?\nMadrid\nBerlin\nParis ✅\nRome"
	q, err := ParseBlock(input, "", 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.CorrectIndex != 2 {
		t.Fatalf("correct index = %d, want 2", q.CorrectIndex)
	}
	if q.Options[2] != "Paris" {
		t.Fatalf("marker not stripped: %q", q.Options[2])
	}
}

func TestParseBlockSkipsBlankLines(t *testing.T) {
	input := "Q?\n\nA ✅\n\nB\n"
	q, err := ParseBlock(input, DefaultCorrectMarker, DefaultMaxOptions)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(q.Options) != 2 {
		t.Fatalf("options = %v", q.Options)
	}
}

func TestParseBlockRejects(t *testing.T) {
	cases := map[string]string{
		"single line":   "Just a question?",
		"one option":    "Q?\nA ✅",
		"no marker":     "Q?\nA\nB\nC",
		"double marker": "Q?\nA ✅\nB ✅\nC",
		"too many":      "Q?\nA ✅\nB\nC\nD\nE",
		"marker only":   "Q?\n✅\nB\nC",
	}
	for name, input := range cases {
		if _, err := ParseBlock(input, DefaultCorrectMarker, DefaultMaxOptions); err == nil {
			t.Errorf("%s: expected error", name)
		} else {
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("%s: expected ValidationError, got %T", name, err)
			}
		}
	}
}

func TestParseBlockCustomMarker(t *testing.T) {
	q, err := ParseBlock("Q?\nA\n*B", "*", DefaultMaxOptions)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if q.CorrectIndex != 1 || q.Options[1] != "B" {
		t.Fatalf("got %+v", q)
	}
}
