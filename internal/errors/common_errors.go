package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeUnsupportedFormat ErrorType = "UNSUPPORTED_FORMAT"
	ErrTypeFormatMismatch    ErrorType = "FORMAT_MISMATCH"
	ErrTypeMissingColumn     ErrorType = "MISSING_COLUMN"
	ErrTypeEmptyDataset      ErrorType = "EMPTY_DATASET"
	ErrTypeNonNumericValue   ErrorType = "NON_NUMERIC_VALUE"
	ErrTypeIOFailure         ErrorType = "IO_FAILURE"

	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
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

// TypeOf returns the kind of the first AppError in err's chain, or "" when
// err carries none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err carries an AppError of the given kind.
func IsType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}

// Helper functions for common error types

// NewUnsupportedFormatError reports a file extension no loader handles.
func NewUnsupportedFormatError(path string) *AppError {
	return NewAppError(ErrTypeUnsupportedFormat, fmt.Sprintf("unsupported file format: %s", path), nil).
		WithContext("path", path)
}

// NewFormatMismatchError reports merge inputs that cannot be combined.
func NewFormatMismatchError(message string) *AppError {
	return NewAppError(ErrTypeFormatMismatch, message, nil)
}

// NewMissingColumnError reports an expected column absent from a table.
func NewMissingColumnError(column string) *AppError {
	return NewAppError(ErrTypeMissingColumn, fmt.Sprintf("missing column %q", column), nil).
		WithContext("column", column)
}

// NewEmptyDatasetError reports a table with nothing to analyze.
func NewEmptyDatasetError(message string) *AppError {
	return NewAppError(ErrTypeEmptyDataset, message, nil)
}

// NewNonNumericValueError reports a course cell that is not a number.
// row is 1-based and counts data rows only.
func NewNonNumericValueError(column string, row int, value string, cause error) *AppError {
	return NewAppError(ErrTypeNonNumericValue,
		fmt.Sprintf("non-numeric value %q in column %q at row %d", value, column, row), cause).
		WithContext("column", column).
		WithContext("row", row).
		WithContext("value", value)
}

// NewIOError creates an I/O failure error
func NewIOError(message string, cause error) *AppError {
	return NewAppError(ErrTypeIOFailure, message, cause)
}

// NewNetworkError creates a network-related error
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
