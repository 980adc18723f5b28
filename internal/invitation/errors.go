package invitation

import (
	"errors"
	"fmt"
)

// Error kinds. Conflict and capacity errors are validation errors too, so
// errors.Is(err, ErrValidation) holds for them.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = fmt.Errorf("%w: conflict", ErrValidation)
	ErrCapacityExceeded = fmt.Errorf("%w: capacity exceeded", ErrValidation)
)

// ErrStale is returned when a conditional save loses against a concurrent
// writer.
var ErrStale = &Error{Kind: ErrConflict, Msg: "invitation was modified concurrently"}

// Error is a domain error carrying a human readable message and a kind that
// callers classify with errors.Is.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

func Conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

func CapacityExceeded(format string, args ...any) error {
	return newError(ErrCapacityExceeded, format, args...)
}
