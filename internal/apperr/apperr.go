// Package apperr classifies errors that reach the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the category of a failure.
type Kind int

const (
	Internal Kind = iota
	Validation
	Unauthorized
	NotFound
	Conflict
	Blocked
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Blocked:
		return "blocked"
	default:
		return "internal"
	}
}

// Error is a failure with a message that is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Invalid reports a payload that failed validation.
func Invalid(msg string) error {
	return &Error{Kind: Validation, Message: msg}
}

// Invalidf is Invalid with formatting.
func Invalidf(format string, args ...any) error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated reports a missing or bad identity.
func Unauthenticated(msg string) error {
	return &Error{Kind: Unauthorized, Message: msg}
}

// Missing reports an absent resource, or one owned by somebody else.
func Missing() error {
	return &Error{Kind: NotFound, Message: "Not found"}
}

// Duplicate reports a unique name clash.
func Duplicate(msg string) error {
	return &Error{Kind: Conflict, Message: msg}
}

// Blockedf reports a mutation refused because of dependent rows.
func Blockedf(format string, args ...any) error {
	return &Error{Kind: Blocked, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, Internal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "Something went wrong"
}
