package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeConfig marks caller misuse: bad model, too many dates, bad interval.
	ErrTypeConfig ErrorType = "CONFIG"
	// ErrTypeNoFiles marks a selection that matched nothing. Not fatal.
	ErrTypeNoFiles ErrorType = "NO_FILES"
	// ErrTypeUnparseableFilename marks a file whose name carries no readable date.
	ErrTypeUnparseableFilename ErrorType = "UNPARSEABLE_FILENAME"
	// ErrTypeReadFailure marks a file that could not be read as a table.
	ErrTypeReadFailure ErrorType = "READ_FAILURE"
	// ErrTypeMalformedRow marks a single row that could not be parsed.
	ErrTypeMalformedRow ErrorType = "MALFORMED_ROW"
	// ErrTypeExport marks a failure writing a report or chart.
	ErrTypeExport ErrorType = "EXPORT"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewNoFilesError creates the condition raised when a selection is empty
func NewNoFilesError(dir, pattern string) *AppError {
	return NewAppError(ErrTypeNoFiles, fmt.Sprintf("there were no files found like %q", pattern), nil).
		WithContext("dir", dir)
}

// NewUnparseableFilenameError creates an error for a filename without a usable date token
func NewUnparseableFilenameError(name string, cause error) *AppError {
	return NewAppError(ErrTypeUnparseableFilename, fmt.Sprintf("no date in file name %q", name), cause).
		WithContext("file", name)
}

// NewReadFailure creates an error for a file that could not be read as a table
func NewReadFailure(path string, cause error) *AppError {
	return NewAppError(ErrTypeReadFailure, fmt.Sprintf("could not read %s", path), cause).
		WithContext("file", path)
}

// NewMalformedRowError creates an error for one unparseable row
func NewMalformedRowError(line int, reason string) *AppError {
	return NewAppError(ErrTypeMalformedRow, fmt.Sprintf("line %d: %s", line, reason), nil).
		WithContext("line", line)
}

// NewExportError creates an error for a failed report or chart write
func NewExportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExport, message, cause)
}

// TypeOf returns the type of the first AppError in err's chain
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

// IsType reports whether err's chain carries an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	t, ok := TypeOf(err)
	return ok && t == errType
}

// IsConfigError reports whether err indicates caller misuse
func IsConfigError(err error) bool {
	return IsType(err, ErrTypeConfig)
}
