package services

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid"

	"plantation-manager/backend/internal/repositories"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("operation not allowed in current state")
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("access denied")
)

// Error carries a caller-facing message together with one of the sentinel
// kinds above, so handlers can pick a status with errors.Is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}

func stateError(format string, args ...interface{}) error {
	return newError(ErrInvalidState, format, args...)
}

func notFound(what string) error {
	return newError(ErrNotFound, "%s not found", what)
}

func forbidden(what string) error {
	return newError(ErrForbidden, "You do not have access to this %s", what)
}

// parseID turns a path or body identifier into a uuid, reporting
// "Invalid <what> ID format" on failure.
func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.FromString(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, validationError("Invalid %s ID format", what)
	}
	return id, nil
}

// lookup maps a store not-found into the service taxonomy and wraps
// anything else with context.
func lookup(err error, what string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
