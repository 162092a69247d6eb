package domain

import (
	"context"
	"errors"
)

// Error kinds. Every error the ledger returns to its callers wraps exactly one
// of them, so callers classify with errors.Is instead of matching messages.
var (
	// ErrInvalidInput indicates a request rejected before touching storage.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates a missing account or entry.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a duplicate creation attempt.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInsufficientFunds indicates a debit that would make a non-overdraft balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrVersionConflict indicates a lost optimistic concurrency race. It never leaves the engine.
	ErrVersionConflict = errors.New("version conflict")
	// ErrContentionExceeded indicates that version conflict retries were exhausted.
	ErrContentionExceeded = errors.New("contention exceeded")
	// ErrStorageUnavailable indicates that the underlying store could not serve the request.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrConstraintViolation indicates a storage constraint without a more specific meaning.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrInvariantViolation indicates that the stored balance disagrees with the journal.
	ErrInvariantViolation = errors.New("invariant violation")
)

// kindError is a specific ledger error classified under one of the kinds above.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// IsRetryable reports whether a request that failed with err may be resubmitted
// with the same idempotency key.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrContentionExceeded) || errors.Is(err, ErrStorageUnavailable)
}

// StorageFailure converts a driver error into ErrStorageUnavailable, keeping
// context cancellation and deadline errors intact.
func StorageFailure(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return ErrStorageUnavailable
}
