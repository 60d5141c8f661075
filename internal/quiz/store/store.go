// Package store persists finished quizzes under their identifiers.
//
// Two backends exist: a YAML file rewritten as a whole on every insert
// (write-through, survives restarts), and a SQL backend over sqlx for
// sqlite/postgres deployments. Both serialize writers so that an insert
// either lands durably or is not observed at all.
package store

import (
	"context"

	"github.com/m3rciful/quizbot/internal/quiz"
)

// Store is the durable id-to-quiz mapping shared across users.
type Store interface {
	// Insert adds a quiz whose id is already assigned. It returns
	// quiz.ErrDuplicateID when the id is taken and a *quiz.StorageError
	// when the durable flush fails. A failed insert leaves the store
	// unchanged.
	Insert(ctx context.Context, z quiz.Quiz) error

	// Get returns the stored quiz or quiz.ErrNotFound.
	Get(ctx context.Context, id string) (quiz.Quiz, error)

	// Exists reports whether the id is present without fetching the quiz.
	Exists(ctx context.Context, id string) bool

	// List returns one summary per stored quiz in insertion order.
	List(ctx context.Context) ([]quiz.Summary, error)

	// Len returns the number of stored quizzes.
	Len(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}
