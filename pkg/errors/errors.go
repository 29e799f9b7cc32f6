package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Engine usage errors. These indicate a misuse of the API, never a
	// filesystem failure.
	ErrWriterOpen  ErrorCode = "WRITER_OPEN"
	ErrConsumed    ErrorCode = "ENGINE_CONSUMED"
	ErrTargetUnset ErrorCode = "TARGET_UNSET"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Demo command errors
	ErrDownload ErrorCode = "DOWNLOAD"
)

// PhazerError represents a structured error with code and details
type PhazerError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PhazerError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PhazerError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PhazerError) Is(target error) bool {
	var targetErr *PhazerError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PhazerError with the given code and message
func New(code ErrorCode, message string) *PhazerError {
	return &PhazerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PhazerError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PhazerError {
	return &PhazerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PhazerError
func Wrap(err error, code ErrorCode, message string) *PhazerError {
	if err == nil {
		return nil
	}
	return &PhazerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PhazerError {
	if err == nil {
		return nil
	}
	return &PhazerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PhazerError) WithDetail(key string, value interface{}) *PhazerError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var phazerErr *PhazerError
	if errors.As(err, &phazerErr) {
		return phazerErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PhazerError
func GetErrorCode(err error) ErrorCode {
	var phazerErr *PhazerError
	if errors.As(err, &phazerErr) {
		return phazerErr.Code
	}
	return ErrUnknown
}
