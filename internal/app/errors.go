package app

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a request that is missing or carries malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an absent entity, or one the requester may not see.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks an entity that exists but is not accessible.
	ErrForbidden = errors.New("forbidden")
	// ErrIntegrity marks an invariant the store could not uphold.
	ErrIntegrity = errors.New("integrity violation")
)

// Error is a classified failure with a caller-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match against the kind sentinel.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Validation returns an ErrValidation-kinded error.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns an ErrNotFound-kinded error.
func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden returns an ErrForbidden-kinded error.
func Forbidden(format string, args ...any) error {
	return &Error{Kind: ErrForbidden, Message: fmt.Sprintf(format, args...)}
}

// Integrity returns an ErrIntegrity-kinded error.
func Integrity(format string, args ...any) error {
	return &Error{Kind: ErrIntegrity, Message: fmt.Sprintf(format, args...)}
}
