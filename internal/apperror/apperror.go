// Package apperror defines the error taxonomy shared by every layer.
//
// Repositories and services return *AppError values that wrap one of the
// sentinel errors below. The HTTP layer only ever inspects the sentinel
// (via errors.Is) to pick a status code, and the Message to fill the body.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Machine-readable codes. They end up in logs, not in response bodies.
const (
	CodeValidation         = "validation_error"
	CodeInvalidID          = "invalid_id"
	CodeMissingField       = "missing_field"
	CodeTooShort           = "too_short"
	CodeDuplicateUsername  = "duplicate_username"
	CodeTokenMissing       = "token_missing"
	CodeTokenInvalid       = "token_invalid"
	CodeInvalidCredentials = "invalid_credentials"
	CodeUserNotFound       = "user_not_found"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
)

type AppError struct {
	Err     error  // actual error
	Code    string // Machine-readable kind, see the Code* constants
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
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    CodeValidation,
		Message: message,
		Field:   field,
	}
}

// InvalidID reports an identifier that is not a well-formed id at all,
// as opposed to a well-formed id that matches nothing (NotFound).
func InvalidID(resource, id string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    CodeInvalidID,
		Message: fmt.Sprintf("malformatted %s id", resource),
		Field:   "id",
	}
}

func MissingField(message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    CodeMissingField,
		Message: message,
	}
}

func TooShort(message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    CodeTooShort,
		Message: message,
	}
}

// DuplicateUsername is a 400, not a 409: registration treats a taken
// username as just another invalid input.
func DuplicateUsername() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    CodeDuplicateUsername,
		Message: "username must be unique",
		Field:   "username",
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Code:    CodeConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Code:    CodeForbidden,
		Message: message,
	}
}

func TokenMissing() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Code:    CodeTokenMissing,
		Message: "token missing",
	}
}

func TokenInvalid() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Code:    CodeTokenInvalid,
		Message: "token invalid",
	}
}

// InvalidCredentials is deliberately vague: an unknown username and a wrong
// password produce the exact same error.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Code:    CodeInvalidCredentials,
		Message: "invalid username or password",
	}
}

// UserNotFound is raised when a valid token names a user that no longer
// exists. It maps to 400.
func UserNotFound() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    CodeUserNotFound,
		Message: "user not found",
	}
}

// CodeOf returns the Code of the first *AppError in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
