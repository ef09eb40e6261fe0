// Package aerrors provides structured error types for the ancestry
// simplification engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the batch and inline drivers
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow the taxonomy of the engine's error handling design:
//   - INVALID_*: construction/input validation failures
//   - UNORDERED_*, DUPLICATE_*, *_OUT_OF_RANGE: batch simplifier input errors
//   - INVARIANT_*: postcondition failures (debug-mode, indicates a bug)
//
// # Usage
//
//	err := aerrors.New(aerrors.ErrCodeInvalidGenomeLength, "L=%d", l)
//	if aerrors.Is(err, aerrors.ErrCodeInvalidGenomeLength) {
//	    // handle
//	}
package aerrors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the taxonomy in the engine's error handling design.
const (
	// ErrCodeInvalidGenomeLength is returned when L <= 0 at construction.
	ErrCodeInvalidGenomeLength Code = "INVALID_GENOME_LENGTH"

	// ErrCodeUnorderedInput is returned when the batch simplifier receives
	// edges not sorted past-to-present.
	ErrCodeUnorderedInput Code = "UNORDERED_INPUT"

	// ErrCodeDuplicateSample is returned when the sample list names the
	// same node twice.
	ErrCodeDuplicateSample Code = "DUPLICATE_SAMPLE"

	// ErrCodeSampleOutOfRange is returned when a sample index is outside
	// the node table.
	ErrCodeSampleOutOfRange Code = "SAMPLE_OUT_OF_RANGE"

	// ErrCodeInvariantViolation is returned when a post-condition check
	// fails: overlapping segments within one ancestry list, asymmetric
	// parent/child back-edges, or a node appearing in its own ancestors.
	ErrCodeInvariantViolation Code = "INVARIANT_VIOLATION"

	// ErrCodeEmptyTransmissions is returned when a birth record arrives
	// with zero parental transmissions.
	ErrCodeEmptyTransmissions Code = "EMPTY_TRANSMISSIONS"

	// ErrCodeUnknownParent is returned when record_birth names a parent
	// slot that is not part of the current graph.
	ErrCodeUnknownParent Code = "UNKNOWN_PARENT"
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
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
