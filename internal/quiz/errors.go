package quiz

import "errors"

var (
	// ErrNotFound indicates the requested quiz id is absent from the store.
	ErrNotFound = errors.New("quiz not found")
	// ErrDuplicateID indicates an insert with an id that is already stored.
	ErrDuplicateID = errors.New("quiz id already exists")
	// ErrEmptyQuiz indicates a finalize attempt with zero accumulated questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
)

// ValidationError reports malformed authoring input. It is always
// recoverable: the session state is left unchanged and the user can retry.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Reason
}

// Code identifies the error class for structured logs.
func (e *ValidationError) Code() string { return "VALIDATION" }

// StorageError wraps a durable-write failure. A mutation that produced a
// StorageError is not committed; callers must not treat it as applied.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// Code identifies the error class for structured logs.
func (e *StorageError) Code() string { return "STORAGE" }
