package quiz

import (
	"errors"
	"testing"
)

func validQuestion() Question {
	return Question{Text: "Q?", Options: []string{"A", "B", "C"}, CorrectIndex: 1}
}

func TestQuestionValidate(t *testing.T) {
	if err := validQuestion().Validate(4); err != nil {
		t.Fatalf("valid question rejected: %v", err)
	}

	bad := []Question{
		{Text: "", Options: []string{"A", "B"}, CorrectIndex: 0},
		{Text: "Q?", Options: []string{"A"}, CorrectIndex: 0},
		{Text: "Q?", Options: []string{"A", "B", "C", "D", "E"}, CorrectIndex: 0},
		{Text: "Q?", Options: []string{"A", "B"}, CorrectIndex: 2},
		{Text: "Q?", Options: []string{"A", "B"}, CorrectIndex: -1},
	}
	for i, q := range bad {
		err := q.Validate(4)
		if err == nil {
			t.Errorf("case %d: expected error", i)
			continue
		}
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("case %d: expected ValidationError, got %T", i, err)
		}
	}
}

func TestQuizValidateEmpty(t *testing.T) {
	z := Quiz{ID: "quiz1"}
	if err := z.Validate(4); !errors.Is(err, ErrEmptyQuiz) {
		t.Fatalf("expected ErrEmptyQuiz, got %v", err)
	}
}

func TestQuizTitle(t *testing.T) {
	z := Quiz{Questions: []Question{validQuestion()}}
	if got := z.Title(); got != "Q?" {
		t.Fatalf("title = %q", got)
	}
	z.Category = "Geography"
	if got := z.Title(); got != "Geography" {
		t.Fatalf("title = %q", got)
	}
}
