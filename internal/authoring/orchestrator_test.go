package authoring

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/m3rciful/quizbot/internal/quiz"
	"github.com/m3rciful/quizbot/internal/quiz/id"
	"github.com/m3rciful/quizbot/internal/quiz/store"
)

func newTestOrchestrator(t *testing.T, opts Options) (*Orchestrator, store.Store) {
	t.Helper()
	st, err := store.OpenFile(filepath.Join(t.TempDir(), "quizzes.yaml"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	orch := New(opts, NewRegistry(0), st, id.NewSequential("quiz", 0))
	return orch, st
}

func sendTurn(t *testing.T, o *Orchestrator, userID int64, text string) Advance {
	t.Helper()
	adv, err := o.HandleTurn(context.Background(), Turn{UserID: userID, Text: text})
	if err != nil {
		t.Fatalf("turn %q: %v", text, err)
	}
	return adv
}

func TestAuthoringFlowStepwise(t *testing.T) {
	ctx := context.Background()
	orch, _ := newTestOrchestrator(t, Options{MaxOptions: 4})

	const user = int64(7)
	if stage := orch.Begin(ctx, user); stage != StageQuestion {
		t.Fatalf("begin stage = %s", stage)
	}
	if !orch.InProgress(user) {
		t.Fatal("session not open after begin")
	}

	adv := sendTurn(t, orch, user, "Capital of France?")
	if adv.Stage != StageOption {
		t.Fatalf("stage after question = %s", adv.Stage)
	}
	for _, opt := range []string{"Madrid", "Berlin", "Paris"} {
		adv = sendTurn(t, orch, user, opt)
	}
	if adv.Stage != StageOption || adv.OptionCount != 3 {
		t.Fatalf("after 3 options: %+v", adv)
	}
	adv = sendTurn(t, orch, user, "Rome")
	if adv.Stage != StageCorrect || adv.OptionCount != 4 {
		t.Fatalf("after 4th option: %+v", adv)
	}

	adv = sendTurn(t, orch, user, "3")
	if adv.Stage != StageQuestion || adv.QuestionCount != 1 {
		t.Fatalf("after correct index: %+v", adv)
	}

	z, err := orch.Finalize(ctx, user)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if z.ID != "quiz1" {
		t.Fatalf("id = %q", z.ID)
	}
	q := z.Questions[0]
	if q.Text != "Capital of France?" || q.CorrectIndex != 2 || q.Options[2] != "Paris" {
		t.Fatalf("stored question = %+v", q)
	}
	if orch.InProgress(user) {
		t.Fatal("session survived finalize")
	}
}

func TestAuthoringBlockMode(t *testing.T) {
	ctx := context.Background()
	orch, _ := newTestOrchestrator(t, Options{MaxOptions: 4})

	const user = int64(8)
	orch.Begin(ctx, user)

	adv := sendTurn(t, orch, user, "Capital of India?\nNew Delhi ✅\nKolkata\nMadurai\nChennai")
	if adv.Stage != StageQuestion || adv.QuestionCount != 1 {
		t.Fatalf("after block: %+v", adv)
	}

	z, err := orch.Finalize(ctx, user)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	q := z.Questions[0]
	if q.CorrectIndex != 0 || q.Options[0] != "New Delhi" {
		t.Fatalf("stored question = %+v", q)
	}
}

func TestAuthoringCategoryAndSingleQuestion(t *testing.T) {
	ctx := context.Background()
	orch, _ := newTestOrchestrator(t, Options{MaxOptions: 4, Categories: true, SingleQuestion: true})

	const user = int64(9)
	if stage := orch.Begin(ctx, user); stage != StageCategory {
		t.Fatalf("begin stage = %s", stage)
	}
	adv := sendTurn(t, orch, user, "Geography")
	if adv.Stage != StageQuestion {
		t.Fatalf("after category: %+v", adv)
	}
	adv = sendTurn(t, orch, user, "Q?\nA ✅\nB")
	if adv.Stage != StageReady {
		t.Fatalf("after single question: %+v", adv)
	}

	// Further text is rejected in the ready stage.
	if _, err := orch.HandleTurn(ctx, Turn{UserID: user, Text: "more"}); err == nil {
		t.Fatal("expected rejection in ready stage")
	}

	z, err := orch.Finalize(ctx, user)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if z.Category != "Geography" {
		t.Fatalf("category = %q", z.Category)
	}
}

func TestAuthoringInvalidInputKeepsState(t *testing.T) {
	ctx := context.Background()
	orch, _ := newTestOrchestrator(t, Options{MaxOptions: 2})

	const user = int64(10)
	orch.Begin(ctx, user)
	sendTurn(t, orch, user, "Q?")
	sendTurn(t, orch, user, "A")
	sendTurn(t, orch, user, "B")

	for _, bad := range []string{"zero", "0", "3", ""} {
		_, err := orch.HandleTurn(ctx, Turn{UserID: user, Text: bad})
		var vErr *quiz.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("input %q: expected ValidationError, got %v", bad, err)
		}
	}

	// The session is still waiting for the correct index.
	adv := sendTurn(t, orch, user, "2")
	if adv.QuestionCount != 1 {
		t.Fatalf("after recovery: %+v", adv)
	}
}

func TestFinalizeWithoutSession(t *testing.T) {
	ctx := context.Background()
	orch, _ := newTestOrchestrator(t, Options{})

	if _, err := orch.Finalize(ctx, 99); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := orch.HandleTurn(ctx, Turn{UserID: 99, Text: "hello"}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestFinalizeEmpty(t *testing.T) {
	ctx := context.Background()
	orch, _ := newTestOrchestrator(t, Options{})

	orch.Begin(ctx, 11)
	if _, err := orch.Finalize(ctx, 11); !errors.Is(err, quiz.ErrEmptyQuiz) {
		t.Fatalf("expected ErrEmptyQuiz, got %v", err)
	}
	if !orch.InProgress(11) {
		t.Fatal("empty finalize must keep the session")
	}
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	orch, _ := newTestOrchestrator(t, Options{})

	if orch.Cancel(ctx, 12) {
		t.Fatal("cancel without session reported work")
	}
	orch.Begin(ctx, 12)
	if !orch.Cancel(ctx, 12) {
		t.Fatal("cancel with session reported nothing")
	}
	if orch.InProgress(12) {
		t.Fatal("session survived cancel")
	}
	// Cancel after finalize path: nothing left to drop.
	if orch.Cancel(ctx, 12) {
		t.Fatal("second cancel reported work")
	}
}

func TestBeginReplacesSession(t *testing.T) {
	ctx := context.Background()
	orch, _ := newTestOrchestrator(t, Options{})

	orch.Begin(ctx, 13)
	sendTurn(t, orch, 13, "Q?\nA ✅\nB")
	orch.Begin(ctx, 13)

	// The replacement starts empty, so finalize has nothing to save.
	if _, err := orch.Finalize(ctx, 13); !errors.Is(err, quiz.ErrEmptyQuiz) {
		t.Fatalf("expected ErrEmptyQuiz, got %v", err)
	}
	if orch.OpenSessions() != 1 {
		t.Fatalf("open sessions = %d", orch.OpenSessions())
	}
}

func TestSequentialIDsAcrossFinalizes(t *testing.T) {
	ctx := context.Background()
	orch, _ := newTestOrchestrator(t, Options{})

	for i, want := range []string{"quiz1", "quiz2", "quiz3"} {
		user := int64(20 + i)
		orch.Begin(ctx, user)
		sendTurn(t, orch, user, "Q?\nA ✅\nB")
		z, err := orch.Finalize(ctx, user)
		if err != nil {
			t.Fatalf("finalize %d: %v", i, err)
		}
		if z.ID != want {
			t.Fatalf("id = %q, want %q", z.ID, want)
		}
	}
}

type failingStore struct {
	store.Store
}

func (f *failingStore) Insert(context.Context, quiz.Quiz) error {
	return &quiz.StorageError{Op: "insert", Err: errors.New("disk full")}
}

func TestFinalizeStorageFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	base, err := store.OpenFile(filepath.Join(t.TempDir(), "quizzes.yaml"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	orch := New(Options{}, NewRegistry(0), &failingStore{Store: base}, id.NewSequential("quiz", 0))

	orch.Begin(ctx, 30)
	sendTurn(t, orch, 30, "Q?\nA ✅\nB")

	_, err = orch.Finalize(ctx, 30)
	var storageErr *quiz.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if !orch.InProgress(30) {
		t.Fatal("authored work lost on storage failure")
	}
}

func TestSessionTTLExpiry(t *testing.T) {
	reg := NewRegistry(10 * time.Millisecond)
	reg.Begin(40, StageQuestion)

	if _, ok := reg.Lookup(40); !ok {
		t.Fatal("fresh session not found")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := reg.Lookup(40); ok {
		t.Fatal("expired session still visible")
	}
	if reg.Len() != 0 {
		t.Fatalf("len = %d after expiry", reg.Len())
	}
}
