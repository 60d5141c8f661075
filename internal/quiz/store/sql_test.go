package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/m3rciful/quizbot/internal/quiz"
)

const testSchema = `
CREATE TABLE quizzes (
    id         TEXT PRIMARY KEY,
    category   TEXT NOT NULL DEFAULT '',
    owner_id   BIGINT NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    pos        BIGINT NOT NULL
);
CREATE TABLE questions (
    quiz_id       TEXT NOT NULL REFERENCES quizzes (id) ON DELETE CASCADE,
    idx           BIGINT NOT NULL,
    text          TEXT NOT NULL,
    options       TEXT NOT NULL,
    correct_index BIGINT NOT NULL,
    PRIMARY KEY (quiz_id, idx)
);`

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := sqlx.Connect("sqlite", filepath.Join(t.TempDir(), "quizbot.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	s := NewSQL(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

func TestSQLStoreInsertGet(t *testing.T) {
	ctx := context.Background()
	s := newSQLStore(t)

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
	if got.ID != want.ID || got.Category != want.Category || got.OwnerID != want.OwnerID {
		t.Fatalf("got %+v", got)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if len(got.Questions) != 2 || got.Questions[0].CorrectIndex != 2 {
		t.Fatalf("questions = %+v", got.Questions)
	}
	if got.Questions[1].Options[0] != "New Delhi" {
		t.Fatalf("options = %+v", got.Questions[1].Options)
	}

	if _, err := s.Get(ctx, "nope"); !errors.Is(err, quiz.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLStoreDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := newSQLStore(t)

	if err := s.Insert(ctx, testQuiz("quiz1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, testQuiz("quiz1")); !errors.Is(err, quiz.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	n, err := s.Len(ctx)
	if err != nil || n != 1 {
		t.Fatalf("len = %d, %v", n, err)
	}
}

func TestSQLStoreListOrder(t *testing.T) {
	ctx := context.Background()
	s := newSQLStore(t)

	uncategorized := quiz.Quiz{
		ID:        "quiz2",
		CreatedAt: time.Now().UTC(),
		Questions: []quiz.Question{
			{Text: "Only question?", Options: []string{"A", "B"}, CorrectIndex: 1},
		},
	}
	if err := s.Insert(ctx, testQuiz("quiz1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, uncategorized); err != nil {
		t.Fatalf("insert: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "quiz1" || list[1].ID != "quiz2" {
		t.Fatalf("list = %+v", list)
	}
	if list[0].Title != "Geography" {
		t.Fatalf("title = %q", list[0].Title)
	}
	// Without a category the first question stands in as the title.
	if list[1].Title != "Only question?" || list[1].Questions != 1 {
		t.Fatalf("summary = %+v", list[1])
	}
}
