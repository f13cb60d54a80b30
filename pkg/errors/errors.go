// Package errors provides structured error types for layerscape.
//
// Every failure inside the layout and interaction engine is local and
// recoverable: a bad layer yields a diagnostic for that layer only, a bad
// payload leaves the previous scene untouched. The codes below let callers
// (CLI, HTTP API, terminal inspector) tell those cases apart without string
// matching.
//
// # Error Codes
//
//   - PARSE_ERROR: the architecture payload could not be decoded or validated
//   - LOOKUP_ERROR: a layer kind has no registered visual template
//   - SHAPE_ERROR: a layer's output shape is missing or too short for its kind
//   - STYLE_MISMATCH: hover restoration found a different primitive count
//   - INVALID_*: input and configuration validation failures
//   - NOT_FOUND, NETWORK_ERROR, TIMEOUT, RATE_LIMITED: collaborator failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeLookup, "no template for kind %q", kind)
//	if errors.Is(err, errors.ErrCodeLookup) {
//	    // layer skipped geometrically
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Engine diagnostics
	ErrCodeParse         Code = "PARSE_ERROR"
	ErrCodeLookup        Code = "LOOKUP_ERROR"
	ErrCodeShape         Code = "SHAPE_ERROR"
	ErrCodeStyleMismatch Code = "STYLE_MISMATCH"

	// Input validation
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidModel  Code = "INVALID_MODEL"

	// Collaborators
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Internal
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error values,
// and the plain error string otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code onto the status the API answers with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeParse, ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath, ErrCodeInvalidModel:
		return 400
	case ErrCodeNotFound:
		return 404
	case ErrCodeRateLimited:
		return 429
	case ErrCodeNetwork:
		return 502
	case ErrCodeTimeout:
		return 504
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
