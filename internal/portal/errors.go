// Package portal implements the operations behind the staff, worker,
// tenant and owner portals. Every operation takes the caller's session
// explicitly and reports failures with the sentinel errors below.
package portal

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed or incomplete input.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden is returned when the session may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition is returned when a record's state forbids the change.
	ErrInvalidTransition = errors.New("invalid state transition")
)

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func forbidden(action string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, action)
}

func invalidTransition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}
