// Package apperr defines the error kinds surfaced by account operations.
// Callers should use errors.As / the Is* helpers to match kinds; the
// Message carried by an Error is safe to return to clients, while the
// wrapped cause is for internal diagnostics only.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindValidation marks malformed user input.
	KindValidation Kind = iota + 1

	// KindAuth marks failed authentication. Messages are intentionally
	// generic so callers cannot distinguish internal causes.
	KindAuth

	// KindConflict marks a duplicate unique field on creation.
	KindConflict

	// KindIntegrity marks stored data violating an internal invariant,
	// a defect rather than bad user input.
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindConflict:
		return "conflict"
	case KindIntegrity:
		return "integrity"
	default:
		return "unknown"
	}
}

// Error carries a kind, a client-safe message, and an optional internal cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Validation returns a validation error with the given client-safe message.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Auth returns an auth error with a generic client-safe message; cause is
// retained for logging but never serialized.
func Auth(message string, cause error) *Error {
	return &Error{Kind: KindAuth, Message: message, Cause: cause}
}

// Conflict returns a conflict error for duplicate unique fields.
func Conflict(message string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: message, Cause: cause}
}

// Integrity returns an integrity error for violated internal invariants.
func Integrity(message string, cause error) *Error {
	return &Error{Kind: KindIntegrity, Message: message, Cause: cause}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// MessageOf returns the client-safe message of err, or a generic fallback.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsAuth(err error) bool       { return KindOf(err) == KindAuth }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsIntegrity(err error) bool  { return KindOf(err) == KindIntegrity }
