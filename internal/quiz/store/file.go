package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
	"log/slog"

	"github.com/m3rciful/quizbot/core/logger"
	"github.com/m3rciful/quizbot/internal/quiz"
)

// fileDoc is the on-disk document: all quizzes in insertion order.
type fileDoc struct {
	Quizzes []quiz.Quiz `yaml:"quizzes"`
}

// FileStore keeps the whole mapping in memory and rewrites a YAML document
// through a temp-file rename on every insert. Writes are human-paced and the
// store stays small, so O(store size) per write is acceptable.
type FileStore struct {
	path string

	mu      sync.RWMutex
	quizzes map[string]quiz.Quiz
	order   []string
}

var _ Store = (*FileStore)(nil)

// OpenFile loads the store document from path. A missing file yields an
// empty store, not an error.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{
		path:    path,
		quizzes: make(map[string]quiz.Quiz),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read store file: %w", err)
		}
		logger.Info(context.Background(), "store", "store.load",
			slog.String("status", "ok"),
			slog.String("backend", "file"),
			slog.String("path", path),
			slog.Int("count", 0),
		)
		return s, nil
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}
	for _, z := range doc.Quizzes {
		if _, dup := s.quizzes[z.ID]; dup {
			return nil, fmt.Errorf("store file: duplicate quiz id %q", z.ID)
		}
		s.quizzes[z.ID] = z
		s.order = append(s.order, z.ID)
	}

	logger.Info(context.Background(), "store", "store.load",
		slog.String("status", "ok"),
		slog.String("backend", "file"),
		slog.String("path", path),
		slog.Int("count", len(s.order)),
	)
	return s, nil
}

// Insert adds the quiz and flushes the whole document before returning.
func (s *FileStore) Insert(ctx context.Context, z quiz.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.quizzes[z.ID]; dup {
		return quiz.ErrDuplicateID
	}

	s.quizzes[z.ID] = z
	s.order = append(s.order, z.ID)

	if err := s.flushLocked(); err != nil {
		// Roll back so the uncommitted quiz is never observable.
		delete(s.quizzes, z.ID)
		s.order = s.order[:len(s.order)-1]
		logger.Error(ctx, "store", "store.insert",
			slog.String("status", "fail"),
			slog.String("backend", "file"),
			slog.String("quiz_id", z.ID),
			slog.String("err", err.Error()),
		)
		return &quiz.StorageError{Op: "flush", Err: err}
	}

	logger.Info(ctx, "store", "store.insert",
		slog.String("status", "ok"),
		slog.String("backend", "file"),
		slog.String("quiz_id", z.ID),
		slog.Int("questions", len(z.Questions)),
		slog.Int("count", len(s.order)),
	)
	return nil
}

// Get returns the stored quiz or quiz.ErrNotFound.
func (s *FileStore) Get(_ context.Context, id string) (quiz.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	z, ok := s.quizzes[id]
	if !ok {
		return quiz.Quiz{}, quiz.ErrNotFound
	}
	return z, nil
}

// Exists reports whether the id is present.
func (s *FileStore) Exists(_ context.Context, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.quizzes[id]
	return ok
}

// List returns summaries in insertion order.
func (s *FileStore) List(_ context.Context) ([]quiz.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]quiz.Summary, 0, len(s.order))
	for _, id := range s.order {
		z := s.quizzes[id]
		out = append(out, quiz.Summary{ID: id, Title: z.Title(), Questions: len(z.Questions)})
	}
	return out, nil
}

// Len returns the number of stored quizzes.
func (s *FileStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }

// flushLocked rewrites the document atomically: marshal, write a sibling
// temp file, fsync, rename over the original.
func (s *FileStore) flushLocked() error {
	doc := fileDoc{Quizzes: make([]quiz.Quiz, 0, len(s.order))}
	for _, id := range s.order {
		doc.Quizzes = append(doc.Quizzes, s.quizzes[id])
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
