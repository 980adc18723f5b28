package booking

import (
	"errors"
	"fmt"
)

// Error kinds for the direct booking flow. A conflict is also invalid.
var (
	ErrInvalid   = errors.New("invalid booking request")
	ErrForbidden = errors.New("booking action forbidden")
	ErrConflict  = fmt.Errorf("%w: conflict", ErrInvalid)
)

// ErrStale is returned by Save when the booking changed since it was read.
var ErrStale = &Error{Kind: ErrConflict, Msg: "booking was modified concurrently"}

// Error carries a message for the caller and a kind for errors.Is.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func invalid(format string, args ...any) error {
	return &Error{Kind: ErrInvalid, Msg: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...any) error {
	return &Error{Kind: ErrForbidden, Msg: fmt.Sprintf(format, args...)}
}
