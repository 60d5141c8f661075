package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"log/slog"

	"github.com/m3rciful/quizbot/core/logger"
	"github.com/m3rciful/quizbot/internal/quiz"
)

// SQLStore persists quizzes in sqlite or postgres through sqlx. The insert
// transaction commit is the durable flush; queries go straight to the
// database so restarts need no warm-up beyond the connection itself.
type SQLStore struct {
	db *sqlx.DB

	// single-writer discipline across inserts
	writeMu sync.Mutex
}

type quizRow struct {
	ID        string `db:"id"`
	Category  string `db:"category"`
	OwnerID   int64  `db:"owner_id"`
	CreatedAt string `db:"created_at"`
	Pos       int64  `db:"pos"`
}

type questionRow struct {
	QuizID       string `db:"quiz_id"`
	Idx          int    `db:"idx"`
	Text         string `db:"text"`
	Options      string `db:"options"`
	CorrectIndex int    `db:"correct_index"`
}

var _ Store = (*SQLStore)(nil)

// NewSQL wraps an open connection. Schema setup is handled by migrations.
func NewSQL(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Insert writes the quiz and its questions in one transaction.
func (s *SQLStore) Insert(ctx context.Context, z quiz.Quiz) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.Exists(ctx, z.ID) {
		return quiz.ErrDuplicateID
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &quiz.StorageError{Op: "begin", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	var pos sql.NullInt64
	if err := tx.GetContext(ctx, &pos, "SELECT MAX(pos) FROM quizzes"); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return &quiz.StorageError{Op: "position", Err: err}
	}

	created := z.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(
		"INSERT INTO quizzes (id, category, owner_id, created_at, pos) VALUES (?, ?, ?, ?, ?)"),
		z.ID, z.Category, z.OwnerID, created.Format(time.RFC3339), pos.Int64+1,
	)
	if err != nil {
		return &quiz.StorageError{Op: "insert quiz", Err: err}
	}

	for i, q := range z.Questions {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return &quiz.StorageError{Op: "encode options", Err: err}
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(
			"INSERT INTO questions (quiz_id, idx, text, options, correct_index) VALUES (?, ?, ?, ?, ?)"),
			z.ID, i, q.Text, string(opts), q.CorrectIndex,
		)
		if err != nil {
			return &quiz.StorageError{Op: "insert question", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &quiz.StorageError{Op: "commit", Err: err}
	}

	logger.Info(ctx, "store", "store.insert",
		slog.String("status", "ok"),
		slog.String("backend", "sql"),
		slog.String("quiz_id", z.ID),
		slog.Int("questions", len(z.Questions)),
	)
	return nil
}

// Get returns the stored quiz or quiz.ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, id string) (quiz.Quiz, error) {
	var row quizRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(
		"SELECT id, category, owner_id, created_at, pos FROM quizzes WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.Quiz{}, quiz.ErrNotFound
	}
	if err != nil {
		return quiz.Quiz{}, &quiz.StorageError{Op: "get quiz", Err: err}
	}

	var qrows []questionRow
	err = s.db.SelectContext(ctx, &qrows, s.db.Rebind(
		"SELECT quiz_id, idx, text, options, correct_index FROM questions WHERE quiz_id = ? ORDER BY idx"), id)
	if err != nil {
		return quiz.Quiz{}, &quiz.StorageError{Op: "get questions", Err: err}
	}

	z := quiz.Quiz{
		ID:       row.ID,
		Category: row.Category,
		OwnerID:  row.OwnerID,
	}
	if t, err := time.Parse(time.RFC3339, row.CreatedAt); err == nil {
		z.CreatedAt = t
	}
	for _, qr := range qrows {
		var opts []string
		if err := json.Unmarshal([]byte(qr.Options), &opts); err != nil {
			return quiz.Quiz{}, &quiz.StorageError{Op: "decode options", Err: err}
		}
		z.Questions = append(z.Questions, quiz.Question{
			Text:         qr.Text,
			Options:      opts,
			CorrectIndex: qr.CorrectIndex,
		})
	}
	return z, nil
}

// Exists reports whether the id is present.
func (s *SQLStore) Exists(ctx context.Context, id string) bool {
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(
		"SELECT COUNT(*) FROM quizzes WHERE id = ?"), id); err != nil {
		return false
	}
	return n > 0
}

// List returns summaries in insertion order.
func (s *SQLStore) List(ctx context.Context) ([]quiz.Summary, error) {
	rows := []struct {
		ID        string `db:"id"`
		Category  string `db:"category"`
		FirstText string `db:"first_text"`
		Questions int    `db:"questions"`
	}{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT q.id AS id,
		       q.category AS category,
		       COALESCE((SELECT text FROM questions WHERE quiz_id = q.id AND idx = 0), '') AS first_text,
		       (SELECT COUNT(*) FROM questions WHERE quiz_id = q.id) AS questions
		FROM quizzes q
		ORDER BY q.pos`)
	if err != nil {
		return nil, &quiz.StorageError{Op: "list", Err: err}
	}

	out := make([]quiz.Summary, 0, len(rows))
	for _, r := range rows {
		title := r.Category
		if title == "" {
			title = r.FirstText
		}
		if title == "" {
			title = r.ID
		}
		out = append(out, quiz.Summary{ID: r.ID, Title: title, Questions: r.Questions})
	}
	return out, nil
}

// Len returns the number of stored quizzes.
func (s *SQLStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM quizzes"); err != nil {
		return 0, &quiz.StorageError{Op: "len", Err: err}
	}
	return n, nil
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}
