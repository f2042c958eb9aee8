package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the machine-distinguishable class of a failure, so API
// callers can branch on retry/permission/data without parsing messages.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindPermission ErrorKind = "permission"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindState      ErrorKind = "state"
	KindRetryable  ErrorKind = "retryable"
	KindInternal   ErrorKind = "internal"
)

// AppError represents an application error
type AppError struct {
	Code    int       `json:"code"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, kind ErrorKind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// ValidationErr creates a 400 validation error
func ValidationErr(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, KindValidation, message, err)
}

// PermissionErr creates a 403 permission error
func PermissionErr(message string, err error) *AppError {
	return NewAppError(http.StatusForbidden, KindPermission, message, err)
}

// NotFoundErr creates a 404 not-found error
func NotFoundErr(message string, err error) *AppError {
	return NewAppError(http.StatusNotFound, KindNotFound, message, err)
}

// ConflictErr creates a 409 conflict error (ownership races and the like;
// the caller should re-read and retry)
func ConflictErr(message string, err error) *AppError {
	return NewAppError(http.StatusConflict, KindConflict, message, err)
}

// StateErr creates a 409 invalid-state error (transition not allowed from
// the record's current status)
func StateErr(message string, err error) *AppError {
	return NewAppError(http.StatusConflict, KindState, message, err)
}

// RetryableErr creates a 503 error for transient downstream failures
func RetryableErr(message string, err error) *AppError {
	return NewAppError(http.StatusServiceUnavailable, KindRetryable, message, err)
}

// InternalErr creates a 500 internal error
func InternalErr(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, KindInternal, message, err)
}

// GetAppError returns the AppError if the error is (or wraps) one
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsKind checks whether an error carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Kind == kind
	}
	return false
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
