package engine

import "errors"

// Error taxonomy surfaced to the handler layer, which maps each class to an
// HTTP status. Callers match with errors.Is.
var (
	// ErrValidation - malformed input (missing ids, non-positive pagination).
	ErrValidation = errors.New("invalid input")

	// ErrNotFound - vote/view target does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated - no user identifier supplied where one is required.
	ErrUnauthenticated = errors.New("user not authenticated")

	// ErrConflict - a concurrent-mutation guard rejected the operation; the
	// caller should retry.
	ErrConflict = errors.New("conflicting concurrent update")
)

// StoreError wraps an opaque failure from the backing store. Always
// retryable from the caller's point of view.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string { return "store: " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Err: err}
}
