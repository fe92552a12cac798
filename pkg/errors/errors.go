// Package errors provides structured error types for conet.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the pipeline and the CLI
//   - Machine-readable error codes for programmatic handling
//   - A split between fatal input errors and non-fatal analysis warnings
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (fatal)
//   - *_NOT_FOUND: Resource not found
//   - INSUFFICIENT_DATA, NOT_CONVERGED, MERGE_MISMATCH: analysis conditions
//     that are reported but never abort a run
//   - NETWORK_*: Network-related errors (repository resolver only)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "line %d: want %d fields, got %d", line, want, got)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Abort, nothing has been written yet
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFileNotFound, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors. These abort a run before any output is created.
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"

	// Analysis conditions. Reported as warnings, the run continues.
	ErrCodeInsufficientData Code = "INSUFFICIENT_DATA"
	ErrCodeNotConverged     Code = "NOT_CONVERGED"
	ErrCodeMergeMismatch    Code = "MERGE_MISMATCH"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

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

// IsInputError reports whether err belongs to the fatal input category:
// a missing or unreadable file, or a record that cannot serve the requested
// field indices.
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeFileNotFound, ErrCodeInvalidFormat:
		return true
	}
	return false
}

// Warning is a non-fatal condition attached to an analysis result.
type Warning struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// AsWarning converts err into a Warning. Errors without a code are reported
// as ErrCodeInternal.
func AsWarning(err error) Warning {
	code := GetCode(err)
	if code == "" {
		code = ErrCodeInternal
	}
	return Warning{Code: code, Message: UserMessage(err)}
}
