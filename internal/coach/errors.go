package coach

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveRoleplay is returned by roleplay operations that need a
	// running roleplay when the session has none.
	ErrNoActiveRoleplay = errors.New("no active roleplay session")

	// ErrProviderUnavailable marks failures of flows that have no fallback
	// content to return.
	ErrProviderUnavailable = errors.New("ai provider unavailable")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func required(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func providerFailure(op string, err error) error {
	return fmt.Errorf("coach: %s: %w: %w", op, ErrProviderUnavailable, err)
}
