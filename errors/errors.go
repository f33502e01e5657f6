// Package errors provides the platform's unified error type with machine
// codes and HTTP status mapping. Authentication failures are deliberately
// coarse: validation collapses to one INVALID_TOKEN code so error messages
// never become an oracle, while revocation keeps its own code.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// Unauthorized creates an AppError for missing or failed authentication.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return New(ErrCodeUnauthorized, reason, http.StatusUnauthorized)
}

// Forbidden creates an AppError for insufficient permissions.
func Forbidden(reason string) *AppError {
	if reason == "" {
		reason = "You don't have permission to perform this action."
	}
	return New(ErrCodeForbidden, reason, http.StatusForbidden)
}

// InvalidToken creates an AppError for a token that failed validation.
// One message for every failure mode, on purpose.
func InvalidToken() *AppError {
	return New(ErrCodeInvalidToken, "Invalid or expired token. Please log in again.", http.StatusUnauthorized)
}

// TokenRevoked creates an AppError for a deliberately revoked token.
func TokenRevoked() *AppError {
	return New(ErrCodeTokenRevoked, "This session has been logged out. Please log in again.", http.StatusUnauthorized)
}

// RateLimited creates an AppError for too many attempts, carrying the time
// at which the window resets.
func RateLimited(resetAt time.Time) *AppError {
	e := New(ErrCodeRateLimited, "Too many attempts. Please wait and try again.", http.StatusTooManyRequests)
	if !resetAt.IsZero() {
		e.WithDetail("reset_time", resetAt.UTC().Format(time.RFC3339))
	}
	return e
}

// Validation creates an AppError for invalid input.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// WeakPassword creates an AppError carrying the strength feedback list.
func WeakPassword(feedback []string) *AppError {
	e := New(ErrCodeWeakPassword, "Password is too weak.", http.StatusBadRequest)
	if len(feedback) > 0 {
		e.WithDetail("feedback", feedback)
	}
	return e
}

// NotFound creates an AppError for a resource that was not found.
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource), http.StatusNotFound)
}

// AlreadyExists creates an AppError for a resource that already exists.
func AlreadyExists(resource string) *AppError {
	return New(ErrCodeAlreadyExists, fmt.Sprintf("A %s with these details already exists.", resource), http.StatusConflict)
}

// EmailDelivery creates an AppError for a failed verification email send.
func EmailDelivery(cause error) *AppError {
	return New(ErrCodeEmailDelivery, "Unable to send verification email. Please try again.", http.StatusInternalServerError).WithCause(cause)
}

// Internal creates an AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again.", http.StatusInternalServerError).WithCause(cause)
}
