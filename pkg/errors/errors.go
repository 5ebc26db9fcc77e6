// Package errors provides structured error types for the topostim compiler.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, API, and the compile pipeline
//   - Machine-readable error codes for programmatic handling
//   - A clean separation between the compiler's failure kinds
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow the compiler's failure taxonomy:
//   - INVALID_*: construction-invariant violations (malformed input or
//     programming errors caught at the point of construction; always fatal
//     to the current compilation)
//   - UNSUPPORTED_*: conceivable-but-unhandled configurations (gaps in
//     algorithm coverage, distinct from malformed input)
//   - NOT_FOUND_*: lookup failures indicating a pipeline-ordering violation
//     (a later stage ran before an earlier required stage)
//   - INTERNAL_*: contract violations that should be unreachable
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSchedule, "timesteps differ: %s vs %s", a, b)
//	if errors.Is(err, errors.ErrCodeInvalidSchedule) {
//	    // Handle schedule mismatch
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(origErr, errors.ErrCodeInternal, "merging depth %d", z)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the compiler's failure kinds.
const (
	// Construction-invariant violations
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidShape     Code = "INVALID_SHAPE"
	ErrCodeInvalidTemplate  Code = "INVALID_TEMPLATE"
	ErrCodeInvalidSchedule  Code = "INVALID_SCHEDULE"
	ErrCodeInvalidBlock     Code = "INVALID_BLOCK"
	ErrCodeInvalidPosition  Code = "INVALID_POSITION"
	ErrCodeInvalidJunction  Code = "INVALID_JUNCTION"
	ErrCodeInvalidRPNG      Code = "INVALID_RPNG"
	ErrCodeInvalidManifest  Code = "INVALID_MANIFEST"
	ErrCodeOccupiedPosition Code = "OCCUPIED_POSITION"

	// Unsupported-but-conceivable configurations: gaps in algorithm
	// coverage, not malformed input.
	ErrCodeUnsupported      Code = "UNSUPPORTED"
	ErrCodeUnsupportedMerge Code = "UNSUPPORTED_MERGE"

	// Lookup / ordering failures
	ErrCodeNotFound           Code = "NOT_FOUND"
	ErrCodeAnnotationNotFound Code = "ANNOTATION_NOT_FOUND"
	ErrCodeQubitNotFound      Code = "QUBIT_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
func Wrap(cause error, code Code, format string, args ...any) *Error {
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

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsInvariantViolation reports whether the error is a construction-invariant
// violation (any INVALID_* or OCCUPIED_* code).
func IsInvariantViolation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidShape, ErrCodeInvalidTemplate,
		ErrCodeInvalidSchedule, ErrCodeInvalidBlock, ErrCodeInvalidPosition,
		ErrCodeInvalidJunction, ErrCodeInvalidRPNG, ErrCodeInvalidManifest,
		ErrCodeOccupiedPosition:
		return true
	}
	return false
}

// IsUnsupported reports whether the error marks a configuration the compiler
// does not implement yet, as opposed to malformed input.
func IsUnsupported(err error) bool {
	switch GetCode(err) {
	case ErrCodeUnsupported, ErrCodeUnsupportedMerge:
		return true
	}
	return false
}
