// Package domainerrors provides coded errors that cross the service boundary.
// Services translate store sentinels and validation results into these; the
// HTTP layer maps codes to status codes without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies the class of a domain error. Codes are part of the API
// contract: they appear verbatim in the "error" field of error responses.
type Code string

const (
	// CodeBadRequest covers malformed requests: bad JSON, bad query params.
	CodeBadRequest Code = "bad_request"
	// CodeValidation covers subscriber records that violate the record
	// invariants. Errors with this code carry the full violation list.
	CodeValidation Code = "validation_failed"
	// CodeDuplicateKey signals an identity conflict on the primary key.
	CodeDuplicateKey Code = "duplicate_key"
	// CodeNotFound signals that no record exists at the requested key.
	CodeNotFound Code = "not_found"
	// CodeStorageUnavailable is transient: the caller may retry with backoff.
	CodeStorageUnavailable Code = "storage_unavailable"
	// CodeUpstreamUnavailable is transient: the proxy target is unreachable.
	CodeUpstreamUnavailable Code = "upstream_unavailable"
	// CodeUpstreamTimeout is transient: the proxy target did not answer in time.
	CodeUpstreamTimeout Code = "upstream_timeout"
	// CodeInternal is a catch-all; its message is never exposed to callers.
	CodeInternal Code = "internal_error"
)

// Violation records a single failed constraint on a field.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error is a coded domain error. Violations is populated only for
// CodeValidation so a caller can fix every field in one round trip.
type Error struct {
	Code       Code
	Message    string
	Violations []Violation
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message while keeping the cause
// available via errors.Unwrap.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// Wrapf annotates err with a code and a formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// WithViolations attaches the collected field violations to a validation
// error and returns the error for chaining.
func (e *Error) WithViolations(violations []Violation) *Error {
	e.Violations = violations
	return e
}

// HasCode reports whether err is a domain error carrying the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in a service.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
