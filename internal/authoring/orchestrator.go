package authoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/m3rciful/quizbot/core/logger"
	"github.com/m3rciful/quizbot/internal/quiz"
	"github.com/m3rciful/quizbot/internal/quiz/id"
	"github.com/m3rciful/quizbot/internal/quiz/store"
)

// ErrNoSession indicates a turn or finalize for a user with no open session.
var ErrNoSession = errors.New("no open authoring session")

// Turn is one inbound message attributed to a user.
type Turn struct {
	UserID int64
	Text   string
}

// Advance describes the session after a successfully handled turn; the
// caller renders the next prompt from it.
type Advance struct {
	Stage         Stage
	OptionCount   int
	MaxOptions    int
	QuestionCount int
}

// Options controls the authoring flow shape.
type Options struct {
	MaxOptions     int
	Categories     bool
	SingleQuestion bool
	CorrectMarker  string
}

// Orchestrator routes authoring turns to the user's session, advances its
// state, and persists the finished quiz on finalize.
type Orchestrator struct {
	opts  Options
	reg   *Registry
	store store.Store
	gen   id.Generator

	// finalizeMu makes identifier generation plus store insert one atomic
	// unit so racing finalizes never collide or lose data.
	finalizeMu sync.Mutex
}

// New wires the orchestrator with its collaborators.
func New(opts Options, reg *Registry, st store.Store, gen id.Generator) *Orchestrator {
	if opts.MaxOptions < quiz.MinOptions {
		opts.MaxOptions = quiz.DefaultMaxOptions
	}
	if opts.CorrectMarker == "" {
		opts.CorrectMarker = quiz.DefaultCorrectMarker
	}
	return &Orchestrator{opts: opts, reg: reg, store: st, gen: gen}
}

// Begin opens a fresh session for the user, replacing any open one, and
// returns the starting stage.
func (o *Orchestrator) Begin(ctx context.Context, userID int64) Stage {
	unlock := o.reg.Lock(userID)
	defer unlock()

	stage := StageQuestion
	if o.opts.Categories {
		stage = StageCategory
	}
	o.reg.Begin(userID, stage)
	logger.Info(ctx, "service.authoring", "session.begin",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("stage", string(stage)),
	)
	return stage
}

// InProgress reports whether the user has an open session.
func (o *Orchestrator) InProgress(userID int64) bool {
	_, ok := o.reg.Lookup(userID)
	return ok
}

// OpenSessions returns the number of open sessions.
func (o *Orchestrator) OpenSessions() int { return o.reg.Len() }

// HandleTurn advances the user's session with one inbound text turn. A
// *quiz.ValidationError leaves the session unchanged; the caller reports it
// to the user and the flow continues.
func (o *Orchestrator) HandleTurn(ctx context.Context, t Turn) (Advance, error) {
	unlock := o.reg.Lock(t.UserID)
	defer unlock()

	sess, ok := o.reg.Lookup(t.UserID)
	if !ok {
		return Advance{Stage: StageIdle}, ErrNoSession
	}

	adv, err := o.advance(sess, t.Text)
	if err != nil {
		logger.Debug(ctx, "service.authoring", "turn.rejected",
			slog.String("status", "fail"),
			slog.Int64("user_id", t.UserID),
			slog.String("stage", string(sess.Stage)),
			slog.String("err", err.Error()),
		)
		return Advance{Stage: sess.Stage}, err
	}
	sess.touch()

	logger.Debug(ctx, "service.authoring", "turn.handled",
		slog.String("status", "ok"),
		slog.Int64("user_id", t.UserID),
		slog.String("stage", string(adv.Stage)),
		slog.Int("questions", adv.QuestionCount),
	)
	return adv, nil
}

// advance applies one turn to the session. On error the session is left
// untouched.
func (o *Orchestrator) advance(sess *Session, text string) (Advance, error) {
	trimmed := strings.TrimSpace(text)

	switch sess.Stage {
	case StageCategory:
		if trimmed == "" {
			return Advance{}, &quiz.ValidationError{Reason: "category must not be empty"}
		}
		sess.Category = trimmed
		sess.Stage = StageQuestion

	case StageQuestion:
		if trimmed == "" {
			return Advance{}, &quiz.ValidationError{Reason: "question text must not be empty"}
		}
		if strings.Contains(trimmed, "\n") {
			// Block mode: the whole question arrives as one message.
			q, err := quiz.ParseBlock(trimmed, o.opts.CorrectMarker, o.opts.MaxOptions)
			if err != nil {
				return Advance{}, err
			}
			sess.Questions = append(sess.Questions, q)
			sess.resetPending()
			sess.Stage = o.afterQuestion()
			break
		}
		sess.PendingQuestion = trimmed
		sess.PendingOptions = nil
		sess.Stage = StageOption

	case StageOption:
		if trimmed == "" {
			return Advance{}, &quiz.ValidationError{Reason: "option text must not be empty"}
		}
		sess.PendingOptions = append(sess.PendingOptions, trimmed)
		if len(sess.PendingOptions) >= o.opts.MaxOptions {
			sess.Stage = StageCorrect
		}

	case StageCorrect:
		n, err := strconv.Atoi(trimmed)
		if err != nil || n < 1 || n > len(sess.PendingOptions) {
			return Advance{}, &quiz.ValidationError{
				Reason: fmt.Sprintf("send a number between 1 and %d", len(sess.PendingOptions)),
			}
		}
		q := quiz.Question{
			Text:         sess.PendingQuestion,
			Options:      sess.PendingOptions,
			CorrectIndex: n - 1,
		}
		sess.Questions = append(sess.Questions, q)
		sess.resetPending()
		sess.Stage = o.afterQuestion()

	case StageReady:
		return Advance{}, &quiz.ValidationError{Reason: "the quiz is complete; finalize it or cancel"}

	case StageIdle:
		return Advance{}, ErrNoSession
	}

	return Advance{
		Stage:         sess.Stage,
		OptionCount:   len(sess.PendingOptions),
		MaxOptions:    o.opts.MaxOptions,
		QuestionCount: len(sess.Questions),
	}, nil
}

func (o *Orchestrator) afterQuestion() Stage {
	if o.opts.SingleQuestion {
		return StageReady
	}
	return StageQuestion
}

// Finalize persists the accumulated quiz under a fresh identifier, clears
// the session, and returns the stored quiz. On a storage failure the
// session is kept so no authored work is lost.
func (o *Orchestrator) Finalize(ctx context.Context, userID int64) (quiz.Quiz, error) {
	unlock := o.reg.Lock(userID)
	defer unlock()

	sess, ok := o.reg.Lookup(userID)
	if !ok {
		return quiz.Quiz{}, ErrNoSession
	}
	if len(sess.Questions) == 0 {
		return quiz.Quiz{}, quiz.ErrEmptyQuiz
	}

	z, err := o.persist(ctx, sess)
	if err != nil {
		logger.Error(ctx, "service.authoring", "finalize",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.Int("questions", len(sess.Questions)),
			slog.String("err", err.Error()),
		)
		return quiz.Quiz{}, err
	}

	o.reg.Clear(userID)
	logger.Info(ctx, "service.authoring", "finalize",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("quiz_id", z.ID),
		slog.Int("questions", len(z.Questions)),
	)
	return z, nil
}

// persist generates an id and inserts under the global finalize lock. A
// defensive duplicate rejection from the store is retried once with a fresh
// id; the generator contract makes a second collision impossible in one
// process.
func (o *Orchestrator) persist(ctx context.Context, sess *Session) (quiz.Quiz, error) {
	o.finalizeMu.Lock()
	defer o.finalizeMu.Unlock()

	exists := func(id string) bool { return o.store.Exists(ctx, id) }

	z := quiz.Quiz{
		Category:  sess.Category,
		OwnerID:   sess.UserID,
		CreatedAt: time.Now().UTC(),
		Questions: sess.Questions,
	}

	for attempt := 0; attempt < 2; attempt++ {
		z.ID = o.gen.Next(exists)
		err := o.store.Insert(ctx, z)
		if err == nil {
			return z, nil
		}
		if errors.Is(err, quiz.ErrDuplicateID) {
			continue
		}
		return quiz.Quiz{}, err
	}
	return quiz.Quiz{}, quiz.ErrDuplicateID
}

// Cancel drops the user's session unconditionally and reports whether one
// was open. Cancelling with no session is a no-op.
func (o *Orchestrator) Cancel(ctx context.Context, userID int64) bool {
	unlock := o.reg.Lock(userID)
	defer unlock()

	had := o.reg.Clear(userID)
	if had {
		logger.Info(ctx, "service.authoring", "session.cancel",
			slog.String("status", "ok"),
			slog.Int64("user_id", userID),
		)
	}
	return had
}
