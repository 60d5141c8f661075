package delivery

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/m3rciful/quizbot/internal/quiz"
	"github.com/m3rciful/quizbot/internal/quiz/store"
)

func newStoreWithQuiz(t *testing.T) store.Store {
	t.Helper()
	st, err := store.OpenFile(filepath.Join(t.TempDir(), "quizzes.yaml"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	z := quiz.Quiz{
		ID: "quiz1",
		Questions: []quiz.Question{
			{Text: "First?", Options: []string{"A", "B"}, CorrectIndex: 0},
			{Text: "Second?", Options: []string{"C", "D", "E"}, CorrectIndex: 2},
		},
	}
	if err := st.Insert(context.Background(), z); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return st
}

func TestDeliverOrderAndContent(t *testing.T) {
	seq := New(newStoreWithQuiz(t))

	var got []PollRequest
	err := seq.Deliver(context.Background(), "quiz1", func(req PollRequest) error {
		got = append(got, req)
		return nil
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}

	want := []PollRequest{
		{QuestionText: "First?", Options: []string{"A", "B"}, CorrectIndex: 0},
		{QuestionText: "Second?", Options: []string{"C", "D", "E"}, CorrectIndex: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("requests = %+v, want %+v", got, want)
	}
	for _, req := range got {
		if req.Anonymous {
			t.Fatal("quiz polls must not be anonymous")
		}
	}
}

func TestDeliverReplays(t *testing.T) {
	seq := New(newStoreWithQuiz(t))
	ctx := context.Background()

	for run := 0; run < 2; run++ {
		count := 0
		err := seq.Deliver(ctx, "quiz1", func(PollRequest) error {
			count++
			return nil
		})
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if count != 2 {
			t.Fatalf("run %d emitted %d requests", run, count)
		}
	}
}

func TestDeliverNotFound(t *testing.T) {
	seq := New(newStoreWithQuiz(t))

	emitted := false
	err := seq.Deliver(context.Background(), "missing", func(PollRequest) error {
		emitted = true
		return nil
	})
	if !errors.Is(err, quiz.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if emitted {
		t.Fatal("emit called for unknown quiz")
	}
}

func TestDeliverStopsOnEmitError(t *testing.T) {
	seq := New(newStoreWithQuiz(t))

	boom := errors.New("transport down")
	count := 0
	err := seq.Deliver(context.Background(), "quiz1", func(PollRequest) error {
		count++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped emit error, got %v", err)
	}
	if count != 1 {
		t.Fatalf("emit called %d times after failure", count)
	}
}
