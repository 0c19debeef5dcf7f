package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the application's error taxonomy. Services wrap these
// (via AppError) and handlers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrDuplicateUser    = errors.New("duplicate user")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrStore            = errors.New("store error")
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
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// DuplicateUser reports a sign-up attempt with a username that already exists.
func DuplicateUser(username string) *AppError {
	return &AppError{
		Err:     ErrDuplicateUser,
		Message: fmt.Sprintf("username %q is already taken", username),
	}
}

// Unauthorized is deliberately generic: the same message is returned for an
// unknown username and for a wrong password, so the login endpoint cannot be
// used to enumerate accounts.
func Unauthorized() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "invalid credentials",
	}
}

// ModelUnavailable reports that a classifier artifact failed to load at
// startup. The rest of the application keeps working (degraded mode); only
// predictions from the named model are refused.
func ModelUnavailable(modelID string) *AppError {
	return &AppError{
		Err:     ErrModelUnavailable,
		Message: fmt.Sprintf("prediction model %q is unavailable", modelID),
	}
}

// Store wraps an underlying storage failure. The cause stays in the error
// chain for logs; the Message is safe to show to a user.
func Store(err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrStore, err),
		Message: "a storage error occurred",
	}
}
