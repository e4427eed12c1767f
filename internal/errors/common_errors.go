package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeFormat        ErrorType = "FORMAT"
	ErrTypeMissingColumn ErrorType = "MISSING_COLUMN"
	ErrTypeEmptyResult   ErrorType = "EMPTY_RESULT"
	ErrTypeValidation    ErrorType = "VALIDATION"
	ErrTypeConfig        ErrorType = "CONFIG"
	ErrTypeInternal      ErrorType = "INTERNAL"
)

// Sentinels for errors.Is checks. ErrMissingColumn is also an ErrFormat.
var (
	ErrFormat        = stderrors.New("invalid dataset format")
	ErrMissingColumn = fmt.Errorf("%w: missing required column", ErrFormat)
	ErrEmptyResult   = stderrors.New("no valid data rows found")
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

// NewFormatError reports a structural problem with an imported document
func NewFormatError(message string) *AppError {
	return NewAppError(ErrTypeFormat, message, ErrFormat)
}

// NewMissingColumnError reports that a required column could not be located
func NewMissingColumnError(column string) *AppError {
	return NewAppError(ErrTypeMissingColumn, fmt.Sprintf("missing required '%s' column", column), ErrMissingColumn).
		WithContext("column", column)
}

// NewEmptyResultError reports that a full parse produced no usable rows
func NewEmptyResultError(rowsSeen int) *AppError {
	return NewAppError(ErrTypeEmptyResult, "no valid data rows found", ErrEmptyResult).
		WithContext("rows_seen", rowsSeen)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the AppError type found in err's chain, or "" if none
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
