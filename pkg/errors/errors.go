// Package errors provides structured error types for specdiff.
//
// Errors carry a machine-readable [Code] so the CLI can decide whether a
// failure is fatal for a single manifest, for one corpus directory, or for
// the whole invocation.
//
// # Error Codes
//
//   - INVALID_*: malformed manifests, flags or configuration
//   - *_NOT_FOUND / EMPTY_CORPUS: corpus directory problems
//   - NO_COMPARISONS: a directory produced zero pairwise results
//   - FACT_DERIVATION: the external fact deriver failed
//   - INTERNAL_ERROR: unexpected failures (artifact writes, encoding)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidManifest, "%s: package %q has no compiler", path, name)
//	if errors.Is(err, errors.ErrCodeInvalidManifest) {
//	    // skip the manifest
//	}
//
//	err := errors.Wrap(errors.ErrCodeFactDerivation, origErr, "derive facts for %s", name)
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
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Corpus errors
	ErrCodeDirectoryNotFound Code = "DIRECTORY_NOT_FOUND"
	ErrCodeFileNotFound      Code = "FILE_NOT_FOUND"
	ErrCodeEmptyCorpus       Code = "EMPTY_CORPUS"
	ErrCodeNoComparisons     Code = "NO_COMPARISONS"

	// Collaborator errors
	ErrCodeFactDerivation Code = "FACT_DERIVATION"
	ErrCodeCache          Code = "CACHE_ERROR"

	// Internal errors
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

// Fatal reports whether err should stop processing of a whole corpus
// directory rather than a single manifest.
func Fatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidManifest, ErrCodeInvalidPackage:
		return false
	}
	return err != nil
}
