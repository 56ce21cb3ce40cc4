// Package errors provides the error taxonomy for the market-sync pipeline.
// These errors enable programmatic branching on failure kind (retry, abort,
// re-inspect) instead of string matching on lost messages.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the pipeline.
var (
	// ErrTransient indicates a retryable failure (5xx, timeout, connection).
	ErrTransient = errors.New("transient failure")

	// ErrPermanent indicates a non-retryable request failure (4xx other than 429).
	ErrPermanent = errors.New("permanent request failure")

	// ErrRateBudgetExhausted indicates the provider's error allowance for this
	// session reached zero. The in-flight batch must be abandoned immediately.
	ErrRateBudgetExhausted = errors.New("provider error budget exhausted")

	// ErrIntegrity indicates a post-write row count did not match expectation.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrStaleState indicates the local replica disagrees with the remote
	// even after a sync attempt.
	ErrStaleState = errors.New("local state stale")
)

// TransientError represents a retryable network-level failure.
type TransientError struct {
	Status int // HTTP status, 0 for connection/timeout errors
	Err    error
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transient failure: status %d", e.Status)
	}
	return fmt.Sprintf("transient failure: %v", e.Err)
}

// Is implements errors.Is support.
func (e *TransientError) Is(target error) bool {
	return target == ErrTransient
}

// Unwrap returns the underlying error, if any.
func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError represents a request the provider rejected outright.
// Retrying cannot succeed, so the fetcher surfaces it immediately.
type PermanentError struct {
	Status   int
	Resource string
}

// Error implements the error interface.
func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent failure for %s: status %d", e.Resource, e.Status)
}

// Is implements errors.Is support.
func (e *PermanentError) Is(target error) bool {
	return target == ErrPermanent
}

// IntegrityError reports a table whose post-write row count does not match
// the reconciled batch. The write itself has already been committed; the
// caller must treat the table as needing re-inspection.
type IntegrityError struct {
	Table    string
	Expected int64
	Got      int64
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed for %s: expected %d rows, got %d", e.Table, e.Expected, e.Got)
}

// Is implements errors.Is support.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// StaleStateError reports a watermark mismatch between the local file and
// the remote replica that persisted after a sync attempt.
type StaleStateError struct {
	Table  string
	Local  string
	Remote string
}

// Error implements the error interface.
func (e *StaleStateError) Error() string {
	return fmt.Sprintf("stale state in %s: local watermark %q, remote %q", e.Table, e.Local, e.Remote)
}

// Is implements errors.Is support.
func (e *StaleStateError) Is(target error) bool {
	return target == ErrStaleState
}

// IsTransient reports whether err should be retried with backoff.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsRateBudgetExhausted reports whether err is the provider hard-stop signal.
func IsRateBudgetExhausted(err error) bool {
	return errors.Is(err, ErrRateBudgetExhausted)
}
