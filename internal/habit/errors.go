package habit

import (
	"errors"
	"fmt"
)

// Error is the typed error surfaced by the engine and store.
//
// The caller of any operation receives either the resulting state or one of
// these; there is no silent partial success. Idempotency absorbs what would
// otherwise be conflicts at the ledger uniqueness layer (duplicate create,
// double delete) - those are normal outcomes, never Errors.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// CodeValidation indicates bad caller input: value out of range, date
	// outside the tolerance window, malformed timezone or schedule.
	CodeValidation ErrorCode = "VALIDATION"

	// CodeNotFound indicates a missing or soft-deleted habit, or an absent
	// record where one was required.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeConflict indicates a write that would violate a hard invariant,
	// e.g. a simultaneous schedule-shape change.
	CodeConflict ErrorCode = "CONFLICT"

	// CodeForbidden indicates an entitlement gate rejected the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// CodePersistence indicates the store failed; the whole mutation unit
	// was rolled back.
	CodePersistence ErrorCode = "PERSISTENCE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidation creates a validation error.
func NewValidation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound creates a not-found error.
func NewNotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewConflict creates a conflict error.
func NewConflict(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// NewForbidden creates a forbidden error.
func NewForbidden(format string, args ...any) *Error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

// WrapPersistence wraps a store failure.
func WrapPersistence(msg string, err error) *Error {
	return &Error{Code: CodePersistence, Message: msg, Err: err}
}

// codeIs reports whether err is (or wraps) an *Error with the given code.
func codeIs(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return codeIs(err, CodeValidation) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return codeIs(err, CodeNotFound) }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return codeIs(err, CodeConflict) }

// IsForbidden reports whether err is a forbidden error.
func IsForbidden(err error) bool { return codeIs(err, CodeForbidden) }

// IsPersistence reports whether err is a persistence error.
func IsPersistence(err error) bool { return codeIs(err, CodePersistence) }
