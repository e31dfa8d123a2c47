// Package errors provides the error types used across the seed pipeline.
// It distinguishes transient transport failures (retryable), per-item
// failures that are recoverable by skipping, and fatal store failures.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies a pipeline error.
type ErrorType string

const (
	ErrorTypeTransport ErrorType = "transport_error"
	ErrorTypeDecode    ErrorType = "decode_error"
	ErrorTypeStore     ErrorType = "store_error"
	ErrorTypeInternal  ErrorType = "internal_error"
)

// AppError is an application error with a classification and optional cause.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewTransportError creates a transport error. Transport errors are the only
// retryable class.
func NewTransportError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeTransport, Message: message, Cause: cause}
}

// NewDecodeError creates an error for an unparseable remote payload.
func NewDecodeError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeDecode, Message: message, Cause: cause}
}

// NewStoreError creates an error for a failed store operation.
func NewStoreError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeStore, Message: message, Cause: cause}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Cause: cause}
}

// IsRetryable reports whether err is a transient transport error.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeTransport
	}
	return false
}

// TypeOf returns the classification of err, or ErrorTypeInternal for
// unclassified errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}
