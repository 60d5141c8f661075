package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m3rciful/quizbot/internal/quiz"
)

func testQuiz(id string) quiz.Quiz {
	return quiz.Quiz{
		ID:        id,
		Category:  "Geography",
		OwnerID:   7,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Questions: []quiz.Question{
			{Text: "Capital of France?", Options: []string{"Madrid", "Berlin", "Paris", "Rome"}, CorrectIndex: 2},
			{Text: "Capital of India?", Options: []string{"New Delhi", "Kolkata"}, CorrectIndex: 0},
		},
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "quizzes.yaml"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	n, err := s.Len(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("len = %d, %v", n, err)
	}
}

func TestFileStoreInsertGet(t *testing.T) {
	ctx := context.Background()
	s, err := OpenFile(filepath.Join(t.TempDir(), "quizzes.yaml"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	want := testQuiz("quiz1")
	if err := s.Insert(ctx, want); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !s.Exists(ctx, "quiz1") {
		t.Fatal("inserted quiz not found via Exists")
	}

	got, err := s.Get(ctx, "quiz1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != want.ID || len(got.Questions) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Questions[0].CorrectIndex != 2 {
		t.Fatalf("correct index = %d", got.Questions[0].CorrectIndex)
	}

	if _, err := s.Get(ctx, "nope"); !errors.Is(err, quiz.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreDuplicateID(t *testing.T) {
	ctx := context.Background()
	s, err := OpenFile(filepath.Join(t.TempDir(), "quizzes.yaml"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Insert(ctx, testQuiz("quiz1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, testQuiz("quiz1")); !errors.Is(err, quiz.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	n, _ := s.Len(ctx)
	if n != 1 {
		t.Fatalf("len = %d after duplicate insert", n)
	}
}

func TestFileStoreReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "quizzes.yaml")

	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Insert(ctx, testQuiz("quiz1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, testQuiz("quiz2")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// A fresh store over the same file must see both quizzes in order.
	reloaded, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	list, err := reloaded.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "quiz1" || list[1].ID != "quiz2" {
		t.Fatalf("list = %+v", list)
	}
	if list[0].Title != "Geography" || list[0].Questions != 2 {
		t.Fatalf("summary = %+v", list[0])
	}

	got, err := reloaded.Get(ctx, "quiz2")
	if err != nil {
		t.Fatalf("get after reload: %v", err)
	}
	if got.Questions[1].Options[0] != "New Delhi" {
		t.Fatalf("options survived badly: %+v", got.Questions[1])
	}
}

func TestFileStoreFlushFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := OpenFile(filepath.Join(dir, "quizzes.yaml"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	// Point the store at a path whose parent is a regular file, so the
	// flush cannot create its temp sibling.
	if err := os.WriteFile(filepath.Join(dir, "blocker"), nil, 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	s.path = filepath.Join(dir, "blocker", "nested.yaml")

	err = s.Insert(ctx, testQuiz("quiz1"))
	var storageErr *quiz.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if s.Exists(ctx, "quiz1") {
		t.Fatal("failed insert still observable")
	}
	n, _ := s.Len(ctx)
	if n != 0 {
		t.Fatalf("len = %d after failed insert", n)
	}
}
