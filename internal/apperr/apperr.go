// Package apperr defines the coded errors surfaced to callers of the todo
// service and their mapping to HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown           Code = "UNKNOWN"
	CodeValidation        Code = "VALIDATION"
	CodeDuplicateUsername Code = "DUPLICATE_USERNAME"
	CodeDuplicateEmail    Code = "DUPLICATE_EMAIL"
	CodeInvalidCredential Code = "INVALID_CREDENTIAL"
	CodeInvalidToken      Code = "INVALID_TOKEN"
	CodeUnknownSubject    Code = "UNKNOWN_SUBJECT"
	CodeInactiveAccount   Code = "INACTIVE_ACCOUNT"
	CodeNotFound          Code = "NOT_FOUND"
)

// HTTPStatus maps a code to the status returned by the HTTP adapter.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeDuplicateUsername, CodeDuplicateEmail, CodeInactiveAccount:
		return http.StatusBadRequest
	case CodeInvalidCredential, CodeInvalidToken, CodeUnknownSubject:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded error. Message is safe to show to the caller.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded error around an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Validation returns a validation error with the given message.
func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// Sentinels for errors.Is matching. Matching is by code, so any *Error with
// the same code satisfies errors.Is against these.
var (
	ErrValidation        = New(CodeValidation, "invalid input")
	ErrDuplicateUsername = New(CodeDuplicateUsername, "Username already registered")
	ErrDuplicateEmail    = New(CodeDuplicateEmail, "Email already registered")
	ErrInvalidCredential = New(CodeInvalidCredential, "Incorrect username or password")
	ErrInvalidToken      = New(CodeInvalidToken, "Could not validate credentials")
	ErrUnknownSubject    = New(CodeUnknownSubject, "Could not validate credentials")
	ErrInactiveAccount   = New(CodeInactiveAccount, "Inactive user")
	ErrNotFound          = New(CodeNotFound, "Todo not found")
)

// CodeOf extracts the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
