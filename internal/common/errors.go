// Package common defines shared constants, sentinel errors and structured
// error types used across client and server layers of DarkTrack. Callers
// should use errors.Is / errors.As to match these values.
package common

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Kinds matched by the structured errors below.
	ErrValidation  = errors.New("validation error")
	ErrRateLimited = errors.New("rate limited")
	ErrPersistence = errors.New("persistence error")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// DisplayTimeLayout is the human-readable form of retry timestamps.
const DisplayTimeLayout = "Jan 2, 2006 at 3:04 PM MST"

// ValidationError reports a rejected input. Field names the offending input.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// RateLimitError is returned when the quick-lookup window is still closed.
type RateLimitError struct {
	NextAvailableAt time.Time
}

func NewRateLimitError(next time.Time) *RateLimitError {
	return &RateLimitError{NextAvailableAt: next.UTC()}
}

func (e *RateLimitError) Error() string {
	return "quick lookup limit reached, next lookup available at " + e.NextAvailableISO()
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// NextAvailableISO returns the retry instant as an RFC 3339 timestamp.
func (e *RateLimitError) NextAvailableISO() string {
	return e.NextAvailableAt.Format(time.RFC3339)
}

// NextAvailableDisplay returns the retry instant pre-formatted for display.
func (e *RateLimitError) NextAvailableDisplay() string {
	return e.NextAvailableAt.Format(DisplayTimeLayout)
}

// RetryAfter is the remaining wait relative to now, never negative.
func (e *RateLimitError) RetryAfter(now time.Time) time.Duration {
	d := e.NextAvailableAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// PersistenceError wraps a failed write. The cause is kept for logs only.
type PersistenceError struct {
	Op    string
	Cause error
}

func NewPersistenceError(op string, cause error) *PersistenceError {
	return &PersistenceError{Op: op, Cause: cause}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
