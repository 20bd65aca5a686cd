package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a conflict with existing data
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeStorageUnavailable indicates the persistent store could not be opened
	ErrorTypeStorageUnavailable ErrorType = "STORAGE_UNAVAILABLE"

	// ErrorTypeStorageWrite indicates a durable write failed
	ErrorTypeStorageWrite ErrorType = "STORAGE_WRITE"

	// ErrorTypeEmptyResponse indicates the streamed payload was blank after stripping
	ErrorTypeEmptyResponse ErrorType = "EMPTY_RESPONSE"

	// ErrorTypeMalformedResponse indicates the streamed payload did not parse
	ErrorTypeMalformedResponse ErrorType = "MALFORMED_RESPONSE"

	// ErrorTypeTransport indicates the streaming call itself failed
	ErrorTypeTransport ErrorType = "TRANSPORT"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewStorageUnavailableError creates an error for a store that cannot be opened
func NewStorageUnavailableError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeStorageUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewStorageWriteError creates an error for a failed durable write
func NewStorageWriteError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeStorageWrite,
		Message: message,
		Err:     err,
	}
}

// NewEmptyResponseError creates an error for a blank streamed payload
func NewEmptyResponseError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeEmptyResponse,
		Message: message,
	}
}

// NewMalformedResponseError creates an error for an unparseable streamed payload
func NewMalformedResponseError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeMalformedResponse,
		Message: message,
		Err:     err,
	}
}

// NewTransportError creates an error for a failed streaming call
func NewTransportError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransport,
		Message: message,
		Err:     err,
	}
}
