// Package quiz holds the domain model shared by the authoring flow,
// the durable store, and the delivery sequencer.
package quiz

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MinOptions is the smallest allowed number of answer options.
	MinOptions = 2
	// DefaultMaxOptions matches the Telegram quiz-poll option limit used by default.
	DefaultMaxOptions = 4
)

// Question is a single multiple-choice question.
type Question struct {
	Text         string   `yaml:"text"`
	Options      []string `yaml:"options"`
	CorrectIndex int      `yaml:"correct_index"`
}

// Validate checks the question invariants: option count within bounds and
// a correct index that addresses an existing option.
func (q Question) Validate(maxOptions int) error {
	if maxOptions < MinOptions {
		maxOptions = DefaultMaxOptions
	}
	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Reason: "question text is empty"}
	}
	if len(q.Options) < MinOptions || len(q.Options) > maxOptions {
		return &ValidationError{Reason: fmt.Sprintf("need between %d and %d options, got %d", MinOptions, maxOptions, len(q.Options))}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return &ValidationError{Reason: fmt.Sprintf("correct option %d is out of range", q.CorrectIndex+1)}
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return &ValidationError{Reason: fmt.Sprintf("option %d is empty", i+1)}
		}
	}
	return nil
}

// Quiz is an ordered collection of questions persisted under a unique id.
// The id is assigned at finalize time and never changes afterwards.
type Quiz struct {
	ID        string     `yaml:"id"`
	Category  string     `yaml:"category,omitempty"`
	OwnerID   int64      `yaml:"owner_id,omitempty"`
	CreatedAt time.Time  `yaml:"created_at,omitempty"`
	Questions []Question `yaml:"questions"`
}

// Validate checks that the quiz is storable: a non-empty id and at least one
// valid question.
func (z Quiz) Validate(maxOptions int) error {
	if strings.TrimSpace(z.ID) == "" {
		return &ValidationError{Reason: "quiz id is empty"}
	}
	if len(z.Questions) == 0 {
		return ErrEmptyQuiz
	}
	for i, q := range z.Questions {
		if err := q.Validate(maxOptions); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

// Title returns the display name used in listings: the category when set,
// otherwise the first question's text.
func (z Quiz) Title() string {
	if strings.TrimSpace(z.Category) != "" {
		return z.Category
	}
	if len(z.Questions) > 0 {
		return z.Questions[0].Text
	}
	return z.ID
}

// Summary is one listing line for a stored quiz.
type Summary struct {
	ID        string
	Title     string
	Questions int
}
