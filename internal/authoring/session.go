// Package authoring drives the per-user conversational quiz-authoring flow:
// a finite-state session accumulates question data across turns until the
// user finalizes or cancels.
package authoring

import (
	"time"

	"github.com/m3rciful/quizbot/internal/quiz"
)

// Stage identifies a step of the authoring conversation. The set is closed;
// the orchestrator matches it exhaustively.
type Stage string

const (
	// StageIdle means the user has no open session.
	StageIdle Stage = "idle"
	// StageCategory awaits the quiz category (category-enabled setups only).
	StageCategory Stage = "await_category"
	// StageQuestion awaits the next question text, or a whole question as
	// one multi-line block.
	StageQuestion Stage = "await_question"
	// StageOption awaits the next answer option.
	StageOption Stage = "await_option"
	// StageCorrect awaits the 1-based number of the correct option.
	StageCorrect Stage = "await_correct"
	// StageReady means the quiz is complete and only finalize or cancel
	// are accepted (single-question setups).
	StageReady Stage = "ready"
)

// Session is the mutable authoring state for one user's in-progress quiz.
// It lives in memory only and is dropped on finalize, cancel, replacement,
// or process restart.
type Session struct {
	UserID          int64
	Stage           Stage
	Category        string
	PendingQuestion string
	PendingOptions  []string
	Questions       []quiz.Question
	StartedAt       time.Time
	UpdatedAt       time.Time
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}

// resetPending clears the half-built question after it is assembled.
func (s *Session) resetPending() {
	s.PendingQuestion = ""
	s.PendingOptions = nil
}
