package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the core domain taxonomy. Services return these
// (usually wrapped with context); the transport edge translates them
// via Map.
var (
	// ErrNotFound signals that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden signals an authorization failure: wrong owner or
	// not a participant.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict signals a violated idempotent-upsert assumption.
	// Should not surface to callers while the swipe transaction
	// discipline holds.
	ErrConflict = errors.New("conflict")

	// ErrDependencyUnavailable signals an embedding or vector-index
	// failure. These are absorbed and logged inside the ranking and
	// indexing paths and must never cross the service boundary.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Forbiddenf wraps ErrForbidden with a formatted message.
func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrForbidden)...)
}

// Conflictf wraps ErrConflict with a formatted message.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

func IsNotFound(err error) bool  { return errors.Is(err, ErrNotFound) }
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }
