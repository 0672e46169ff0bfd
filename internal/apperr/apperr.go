// Package apperr defines the API's error taxonomy. Handlers inspect the Code
// of an *Error to pick a status; anything that is not an *Error is treated as
// an internal failure and never shown to the client.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeValidation       Code = "VALIDATION"
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodeForbidden        Code = "FORBIDDEN"
	CodeInvalidReference Code = "INVALID_REFERENCE"
	CodeOutOfStock       Code = "OUT_OF_STOCK"
	CodeNotFound         Code = "NOT_FOUND"
	CodeAlreadyProcessed Code = "ALREADY_PROCESSED"
	CodeConflict         Code = "CONFLICT"
	CodeTooManyRequests  Code = "TOO_MANY_REQUESTS"
	CodeInternal         Code = "INTERNAL"
)

// HTTPStatus returns the status code a response carrying c should use.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeInvalidReference, CodeOutOfStock, CodeAlreadyProcessed:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded application error.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same code, so errors.Is(err, ErrNotFound)
// works regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the status for this error's code.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinels for errors.Is.
var (
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation error"}
	ErrUnauthenticated  = &Error{Code: CodeUnauthenticated, Message: "unauthenticated"}
	ErrForbidden        = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrInvalidReference = &Error{Code: CodeInvalidReference, Message: "invalid reference"}
	ErrOutOfStock       = &Error{Code: CodeOutOfStock, Message: "out of stock"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyProcessed = &Error{Code: CodeAlreadyProcessed, Message: "already processed"}
	ErrConflict         = &Error{Code: CodeConflict, Message: "conflict"}
	ErrTooManyRequests  = &Error{Code: CodeTooManyRequests, Message: "too many requests"}
	ErrInternal         = &Error{Code: CodeInternal, Message: "internal error"}
)

func Validation(msg string) *Error       { return &Error{Code: CodeValidation, Message: msg} }
func Unauthenticated(msg string) *Error  { return &Error{Code: CodeUnauthenticated, Message: msg} }
func Forbidden(msg string) *Error        { return &Error{Code: CodeForbidden, Message: msg} }
func InvalidReference(msg string) *Error { return &Error{Code: CodeInvalidReference, Message: msg} }
func OutOfStock(msg string) *Error       { return &Error{Code: CodeOutOfStock, Message: msg} }
func NotFound(msg string) *Error         { return &Error{Code: CodeNotFound, Message: msg} }
func AlreadyProcessed(msg string) *Error { return &Error{Code: CodeAlreadyProcessed, Message: msg} }
func Conflict(msg string) *Error         { return &Error{Code: CodeConflict, Message: msg} }
func TooManyRequests(msg string) *Error  { return &Error{Code: CodeTooManyRequests, Message: msg} }

// NotFoundf creates a not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}

// From returns err as an *Error, converting anything else into an internal error.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal error", err)
}
