package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Code classifies an Error. Callers switch on it instead of inspecting messages.
type Code string

// Error codes for categorizing errors
const (
	ErrPermissionDenied   Code = "PERMISSION_DENIED"
	ErrAlreadyRunning     Code = "ALREADY_RUNNING"
	ErrAcquisitionTimeout Code = "ACQUISITION_TIMEOUT"
	ErrAcquisitionFailure Code = "ACQUISITION_FAILURE"
	ErrTransientConfig    Code = "TRANSIENT_CONFIG"
	ErrPersistence        Code = "PERSISTENCE"
	ErrConfig             Code = "CONFIG"
	ErrRemote             Code = "REMOTE"
	ErrLimit              Code = "LIMIT"
	ErrUnknown            Code = "UNKNOWN"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       Code
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code Code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrRemote code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrRemote,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code Code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code && err != nil
}

// CodeOf returns the code of the outermost structured Error in err's chain.
// Plain errors report ErrUnknown, and nil reports the empty code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var hlErr *Error
	if errors.As(err, &hlErr) {
		return hlErr.Code
	}
	return ErrUnknown
}

// IsTimeout reports whether err is, or wraps, a deadline expiry.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// Is and As re-export the standard library helpers so callers importing this
// package under the name "errors" keep access to them.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
