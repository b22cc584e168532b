// Package errors provides structured error handling for AutoInsight.
// Errors carry codes and context so the CLI can surface actionable,
// plain-language messages instead of raw internals.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies an error class for programmatic handling.
type Code string

const (
	// Input errors. File reads are the only place a hard failure is
	// appropriate; everything downstream degrades.
	CodeFileRead      Code = "E101"
	CodeEmptyInput    Code = "E102"
	CodeInvalidFormat Code = "E103"

	// Processing errors.
	CodeParseFailed      Code = "E201"
	CodeColumnNotFound   Code = "E202"
	CodeInsufficientData Code = "E203"
	CodeTransformFailed  Code = "E204"

	// Output errors.
	CodeExportFailed Code = "E301"

	// System errors.
	CodeConfigInvalid Code = "E401"
	CodeWatchFailed   Code = "E402"

	CodeUnknown Code = "E999"
)

// Error is the base error type for AutoInsight.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		sb.WriteString(" (")
		first := true
		for k, v := range e.Context {
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%v", k, v))
			first = false
		}
		sb.WriteString(")")
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext attaches a key-value pair to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *Error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// FileRead creates the hard-failure error for an unreadable input file.
// Its message is the one user-visible failure the pipeline may raise.
func FileRead(path string, cause error) *Error {
	return Wrap(cause, CodeFileRead, "CSV analysis failed, check format and try again").
		WithContext("path", path)
}

// ColumnNotFound creates a column resolution error.
func ColumnNotFound(column string, available []string) *Error {
	return New(CodeColumnNotFound, "column not found").
		WithContext("column", column).
		WithContext("available", available)
}

// IsCode checks whether an error carries a specific code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the code from an error, CodeUnknown when absent.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// MultiError collects multiple errors.
type MultiError struct {
	Errors []error
}

// Error implements the error interface.
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(m.Errors)))
	for i, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add appends a non-nil error.
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// HasErrors reports whether anything was collected.
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// Combined returns nil, the single error, or the MultiError.
func (m *MultiError) Combined() error {
	switch len(m.Errors) {
	case 0:
		return nil
	case 1:
		return m.Errors[0]
	default:
		return m
	}
}
