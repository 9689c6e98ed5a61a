// Package apperror defines the service-wide error taxonomy. Every error that
// reaches a handler boundary is either one of these or gets logged and
// collapsed into a generic 500.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries the client-facing error type, HTTP status and message.
type Error struct {
	Type   string
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// WithStatus returns a copy with a different HTTP status. Used where a
// handler deviates from the default mapping for its kind.
func (e *Error) WithStatus(status int) *Error {
	clone := *e
	clone.Status = status
	return &clone
}

func Validation(msg string) *Error {
	return &Error{Type: "ValidationError", Status: http.StatusBadRequest, Msg: msg}
}

func Conflict(msg string) *Error {
	return &Error{Type: "ConflictError", Status: http.StatusBadRequest, Msg: msg}
}

func NotFound(msg string) *Error {
	return &Error{Type: "NotFoundError", Status: http.StatusNotFound, Msg: msg}
}

// InvalidCredentials covers both unknown email and wrong password. Callers
// must use the same message for both so the response carries no enumeration
// signal.
func InvalidCredentials(msg string) *Error {
	return &Error{Type: "InvalidCredentialsError", Status: http.StatusBadRequest, Msg: msg}
}

func Authentication(msg string) *Error {
	return &Error{Type: "AuthenticationError", Status: http.StatusUnauthorized, Msg: msg}
}

func Authorization(msg string) *Error {
	return &Error{Type: "AuthorizationError", Status: http.StatusForbidden, Msg: msg}
}

func Internal(msg string, err error) *Error {
	return &Error{Type: "InternalError", Status: http.StatusInternalServerError, Msg: msg, Err: err}
}

// As unwraps err into an *Error if possible.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
