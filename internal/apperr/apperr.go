// Package apperr holds the closed set of application error codes and the
// error value every service returns to the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code. Codes are a contract with clients
// and are never reused for a different meaning.
type Code string

const (
	CodeUserNotFound         Code = "USER_NOT_FOUND"
	CodeUserNotAuthorized    Code = "USER_NOT_AUTHORIZED"
	CodeUserNotAuthenticated Code = "USER_NOT_AUTHENTICATED"
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeRouteNotFound        Code = "ROUTE_NOT_FOUND"
	CodeInternal             Code = "INTERNAL_SERVER_ERROR"
	CodeEmailAlreadyExists   Code = "EMAIL_ALREADY_EXISTS"
)

// HTTPStatus maps the code to its response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUserNotFound, CodeRouteNotFound:
		return http.StatusNotFound
	case CodeUserNotAuthorized, CodeUserNotAuthenticated:
		return http.StatusUnauthorized
	case CodeValidation:
		return http.StatusBadRequest
	case CodeEmailAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// DefaultMessage is the message used when an error carries none.
func (c Code) DefaultMessage() string {
	switch c {
	case CodeUserNotFound:
		return "User not found"
	case CodeUserNotAuthorized:
		return "User not authorized"
	case CodeUserNotAuthenticated:
		return "User not authenticated"
	case CodeValidation:
		return "Validation error"
	case CodeRouteNotFound:
		return "Route not found"
	case CodeEmailAlreadyExists:
		return "Email already exists"
	default:
		return "Internal server error"
	}
}

// Error is the single error shape that leaves a service.
type Error struct {
	StatusCode    int
	Message       string
	Code          Code
	IsOperational bool
	Err           error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an operational error for code. An empty message falls back to
// the code's default message.
func New(code Code, message string) *Error {
	if message == "" {
		message = code.DefaultMessage()
	}
	return &Error{
		StatusCode:    code.HTTPStatus(),
		Message:       message,
		Code:          code,
		IsOperational: true,
	}
}

// Wrap is New with a cause attached.
func Wrap(code Code, message string, cause error) *Error {
	e := New(code, message)
	e.Err = cause
	return e
}

// Internal marks an unexpected failure. Its message is redacted in
// production.
func Internal(cause error) *Error {
	msg := CodeInternal.DefaultMessage()
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{
		StatusCode:    http.StatusInternalServerError,
		Message:       msg,
		Code:          CodeInternal,
		IsOperational: false,
		Err:           cause,
	}
}

func Validation(message string) *Error { return New(CodeValidation, message) }

func RouteNotFound() *Error { return New(CodeRouteNotFound, "") }

func EmailAlreadyExists() *Error {
	return New(CodeEmailAlreadyExists, "A user with this email already exists")
}

func NotFound(message string) *Error { return New(CodeUserNotFound, message) }

func NotAuthenticated(message string) *Error { return New(CodeUserNotAuthenticated, message) }

func NotAuthorized(message string) *Error { return New(CodeUserNotAuthorized, message) }

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code carried by err, or CodeInternal when err is not
// an application error.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}
