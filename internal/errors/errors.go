package errors

import (
	"errors"
	"fmt"
)

// Error codes for programmatic handling.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeDuplicateID     = "DUPLICATE_ID"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeTransportError  = "TRANSPORT_ERROR"
	CodeStorageError    = "STORAGE_ERROR"
	CodeRemoteError     = "REMOTE_ERROR"
	CodeConfigInvalid   = "CONFIG_INVALID"
)

// HiveError is a structured error with a code and actionable suggestion.
type HiveError struct {
	Code       string // machine-readable code (e.g. NOT_FOUND)
	Message    string // human-readable description
	Suggestion string // actionable fix
	Err        error  // wrapped underlying error
}

// Error implements the error interface.
func (e *HiveError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap supports errors.Is / errors.As.
func (e *HiveError) Unwrap() error {
	return e.Err
}

// New creates a HiveError with the given code and message.
func New(code, message string) *HiveError {
	return &HiveError{Code: code, Message: message}
}

// Newf creates a HiveError with a formatted message.
func Newf(code, format string, args ...interface{}) *HiveError {
	return &HiveError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a HiveError wrapping an existing error.
func Wrap(code, message string, err error) *HiveError {
	return &HiveError{Code: code, Message: message, Err: err}
}

// WithSuggestion returns a copy with the suggestion set.
func (e *HiveError) WithSuggestion(suggestion string) *HiveError {
	e.Suggestion = suggestion
	return e
}

// Is checks whether target matches this error's code.
func (e *HiveError) Is(target error) bool {
	var he *HiveError
	if errors.As(target, &he) {
		return e.Code == he.Code
	}
	return false
}

// AsCode extracts the HiveError code from an error, or "" if not a HiveError.
func AsCode(err error) string {
	var he *HiveError
	if errors.As(err, &he) {
		return he.Code
	}
	return ""
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	return AsCode(err) == CodeNotFound
}

// IsDuplicate reports whether err carries the DUPLICATE_ID code.
func IsDuplicate(err error) bool {
	return AsCode(err) == CodeDuplicateID
}

// Suggestion extracts the suggestion from an error, or "" if not a HiveError.
func Suggestion(err error) string {
	var he *HiveError
	if errors.As(err, &he) {
		return he.Suggestion
	}
	return ""
}
