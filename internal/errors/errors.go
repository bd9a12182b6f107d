package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeUnauthorized indicates no credential accompanied the request.
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	// ErrCodeForbidden indicates a bad, mismatched or non-owning credential.
	ErrCodeForbidden ErrorCode = "forbidden"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeAllocationExhausted indicates every generated key candidate was already taken.
	ErrCodeAllocationExhausted ErrorCode = "allocation_exhausted"
	// ErrCodeInternal indicates a configuration or server fault.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// statusClientClosedRequest is the de facto status for requests abandoned by the caller.
const statusClientClosedRequest = 499

var codeStatus = map[ErrorCode]int{
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeAllocationExhausted: http.StatusServiceUnavailable,
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeTimeout:             http.StatusGatewayTimeout,
	ErrCodeCanceled:            statusClientClosedRequest,
}

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Status overrides the HTTP status derived from Code when non-zero.
	Status int
	// Message is a short caller-facing summary ("not found", "forbidden")
	Message string
	// Description carries optional detail for the caller
	Description string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	msg := e.Message
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status code the error is rendered with, or 0 when it has none.
func (e *AppError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return codeStatus[e.Code]
}

func newError(code ErrorCode, message, description string) *AppError {
	return &AppError{Code: code, Message: message, Description: description}
}

// Unauthorized creates a new Unauthorized error.
func Unauthorized(description string) *AppError {
	return newError(ErrCodeUnauthorized, "unauthorized", description)
}

// Forbidden creates a new Forbidden error.
func Forbidden(description string) *AppError {
	return newError(ErrCodeForbidden, "forbidden", description)
}

// NotFound creates a new NotFound error.
func NotFound(description string) *AppError {
	return newError(ErrCodeNotFound, "not found", description)
}

// NotFoundf creates a new NotFound error with formatted description.
func NotFoundf(format string, args ...any) *AppError {
	return NotFound(fmt.Sprintf(format, args...))
}

// Conflict creates a new Conflict error.
func Conflict(description string) *AppError {
	return newError(ErrCodeConflict, "conflict", description)
}

// Validation creates a new Validation error.
func Validation(description string) *AppError {
	return newError(ErrCodeValidation, "bad request", description)
}

// Validationf creates a new Validation error with formatted description.
func Validationf(format string, args ...any) *AppError {
	return Validation(fmt.Sprintf(format, args...))
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, description string) *AppError {
	err := Validation(description)
	err.Field = field
	return err
}

// AllocationExhausted creates the error returned when no free key candidate was found.
func AllocationExhausted(description string) *AppError {
	return newError(ErrCodeAllocationExhausted, "service unavailable", description)
}

// Internal creates a new Internal error.
func Internal(description string) *AppError {
	return newError(ErrCodeInternal, "internal server error", description)
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsUnauthorized checks if an error is an Unauthorized error.
func IsUnauthorized(err error) bool {
	return isCode(err, ErrCodeUnauthorized)
}

// IsForbidden checks if an error is a Forbidden error.
func IsForbidden(err error) bool {
	return isCode(err, ErrCodeForbidden)
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	return isCode(err, ErrCodeConflict)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsAllocationExhausted checks if an error is an AllocationExhausted error.
func IsAllocationExhausted(err error) bool {
	return isCode(err, ErrCodeAllocationExhausted)
}

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Structured returns the AppError carried by err when it is safe to render to the caller.
// Internal errors and AppErrors without a valid status are reported as unstructured; the
// caller gets a generic 500 and the process escalates.
func Structured(err error) (*AppError, bool) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return nil, false
	}
	if appErr.Code == ErrCodeInternal {
		return nil, false
	}
	status := appErr.HTTPStatus()
	if status < 100 || status > 599 {
		return nil, false
	}
	return appErr, true
}
