// Package delivery replays a stored quiz as an ordered stream of quiz-poll
// prompts.
package delivery

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/m3rciful/quizbot/core/logger"
	"github.com/m3rciful/quizbot/internal/quiz/store"
)

// PollRequest is one quiz-poll prompt for the transport to render. Quiz
// polls are never anonymous so the author can see who answered.
type PollRequest struct {
	QuestionText string
	Options      []string
	CorrectIndex int
	Anonymous    bool
}

// Sequencer reads quizzes from the store and emits their questions in
// stored order. It keeps no completion state: every Deliver replays the
// quiz from the start.
type Sequencer struct {
	store store.Store
}

// New returns a Sequencer backed by the given store.
func New(st store.Store) *Sequencer {
	return &Sequencer{store: st}
}

// Deliver emits one PollRequest per question, strictly in stored order,
// each only after emit accepted the previous one. It returns
// quiz.ErrNotFound without side effects when the id is unknown, and stops
// at the first emit error.
func (s *Sequencer) Deliver(ctx context.Context, id string, emit func(PollRequest) error) error {
	z, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	for i, q := range z.Questions {
		req := PollRequest{
			QuestionText: q.Text,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Anonymous:    false,
		}
		if err := emit(req); err != nil {
			logger.Error(ctx, "service.delivery", "deliver",
				slog.String("status", "fail"),
				slog.String("quiz_id", id),
				slog.Int("question_idx", i),
				slog.String("err", err.Error()),
			)
			return fmt.Errorf("deliver question %d of %s: %w", i+1, id, err)
		}
	}

	logger.Info(ctx, "service.delivery", "deliver",
		slog.String("status", "ok"),
		slog.String("quiz_id", id),
		slog.Int("questions", len(z.Questions)),
	)
	return nil
}
