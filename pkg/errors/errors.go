// Package errors provides structured error types for mfdcache.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the provider and the CLI
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes mirror the failure kinds of the render pipeline:
//   - CONFIG_NOT_FOUND: configuration or display file missing
//   - MALFORMED_CONFIGURATION: parse failure or required field absent
//   - SOURCE_IMAGE_NOT_FOUND: no candidate source bitmap after variant substitution
//   - CACHE_WRITE_FAILURE: a rendered artifact could not be persisted
//
// None of these are retried automatically.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeSourceImageNotFound, "no source image for %s", name)
//	if errors.Is(err, errors.ErrCodeSourceImageNotFound) {
//	    // Handle missing bitmap
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedConfig, origErr, "parse %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidSettings Code = "INVALID_SETTINGS"
	ErrCodeMalformedConfig Code = "MALFORMED_CONFIGURATION"

	// Resource not found errors
	ErrCodeConfigNotFound      Code = "CONFIG_NOT_FOUND"
	ErrCodeSourceImageNotFound Code = "SOURCE_IMAGE_NOT_FOUND"

	// Cache errors
	ErrCodeCacheWrite Code = "CACHE_WRITE_FAILURE"

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

// NotFoundError reports a missing source bitmap together with every path
// that was tried during hardware-variant substitution.
type NotFoundError struct {
	Node      string
	Attempted []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if len(e.Attempted) == 0 {
		return fmt.Sprintf("source image not found for %s", e.Node)
	}
	return fmt.Sprintf("source image not found for %s (tried %v)", e.Node, e.Attempted)
}

// Code returns the error code for this error type.
func (e *NotFoundError) Code() Code {
	return ErrCodeSourceImageNotFound
}
