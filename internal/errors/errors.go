// Package errors defines the coded application error used across services and
// mapped to HTTP statuses at the edge.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorises an AppError.
type ErrorCode string

const (
	ErrCodeNotFound    ErrorCode = "not_found"
	ErrCodeConflict    ErrorCode = "conflict"
	ErrCodeValidation  ErrorCode = "validation"
	ErrCodePersistence ErrorCode = "persistence" // a write to the backing store failed
	ErrCodeInternal    ErrorCode = "internal"
	ErrCodeTimeout     ErrorCode = "timeout"
	ErrCodeCanceled    ErrorCode = "canceled"
)

// AppError carries a code, a caller-safe message and an optional cause.
// Field names the offending input for validation and conflict errors.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Field   string
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Cause }

// NotFound reports a missing resource.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// Conflict reports a state clash, such as a duplicate key or a wrong status.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// ValidationField reports bad input in field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Persistence wraps a failed write. The cause is kept for logging.
func Persistence(err error, message string) *AppError {
	return &AppError{Code: ErrCodePersistence, Message: message, Cause: err}
}

// Internal reports a broken invariant or missing dependency.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Wrap attaches code and message to err. A nil err stays nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Is reports whether any AppError in err's chain has code.
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

func IsNotFound(err error) bool    { return Is(err, ErrCodeNotFound) }
func IsConflict(err error) bool    { return Is(err, ErrCodeConflict) }
func IsValidation(err error) bool  { return Is(err, ErrCodeValidation) }
func IsPersistence(err error) bool { return Is(err, ErrCodePersistence) }
func IsInternal(err error) bool    { return Is(err, ErrCodeInternal) }

// GetCode returns the code of the first AppError in err's chain, or "".
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// PublicMessage returns the caller-safe message of the first AppError in
// err's chain, without its cause or field prefix. Other errors yield "".
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}

// GetField returns the Field of the first AppError in err's chain, or "".
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
