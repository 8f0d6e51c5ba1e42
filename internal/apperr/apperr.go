// Package apperr defines the error kinds shared by the console stores.
//
// Every failure in the core is local and recoverable: the store rejects the
// command and keeps its prior state. Callers branch on the kind with
// errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a command that referenced an id absent from its store.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks malformed text or numeric input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState marks a command attempted outside its permitted state.
	ErrInvalidState = errors.New("invalid state")
)

// Kind labels used in metrics and the activity journal.
const (
	KindOK           = "ok"
	KindNotFound     = "not_found"
	KindInvalidInput = "invalid_input"
	KindInvalidState = "invalid_state"
	KindInternal     = "internal"
)

// NotFound reports that entity id does not exist.
func NotFound(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}

// InvalidInput wraps a formatted message with ErrInvalidInput.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// InvalidState wraps a formatted message with ErrInvalidState.
func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidState)
}

// Kind classifies err. A nil error is KindOK.
func Kind(err error) string {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	default:
		return KindInternal
	}
}
