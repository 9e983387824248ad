package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadySettled is returned when a mutation is attempted on a
	// settled invoice (balance <= 0)
	ErrAlreadySettled = errors.New("invoice already settled")

	// ErrConflict is returned when the persistence layer reports a stale
	// or concurrent write; the caller must refetch before retrying
	ErrConflict = errors.New("invoice was modified concurrently")

	// ErrNotFound is returned when the requested invoice, item or payment
	// does not exist
	ErrNotFound = errors.New("not found")
)

// TransportError wraps a failed or timed-out external call. The operation
// is retryable at the caller's discretion; in-memory state was not updated.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As
func (e *TransportError) Unwrap() error {
	return e.Err
}
