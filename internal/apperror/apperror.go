// Package apperror defines the error taxonomy shared by the stores, the
// services and the HTTP facade.
//
// Every domain failure is an *AppError wrapping one of the sentinels below.
// Callers classify with errors.Is and show AppError.Message to the user:
//
//	errors.Is(err, apperror.ErrForbidden) // caller is not the listing owner
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("Validation Error")
	ErrForbidden  = errors.New("forbidden")
	ErrInternal   = errors.New("internal error")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// NotFoundMessage is NotFound with a caller-chosen message, used where the
// same response has to cover several causes (missing, sold, deleted).
func NotFoundMessage(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Internal wraps an unexpected failure. The cause is kept for logging and
// errors.Is, but Message stays generic so driver details never leak.
func Internal(cause error) *AppError {
	return &AppError{
		Err:     errors.Join(ErrInternal, cause),
		Message: "an internal error occurred",
	}
}
