// Package apperr defines the application error taxonomy and its HTTP mapping.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Type string

const (
	TypeValidation       Type = "validation_error"
	TypeUnauthorized     Type = "unauthorized"
	TypeNotFound         Type = "not_found"
	TypeForbidden        Type = "forbidden"
	TypeConflict         Type = "conflict"
	TypeMethodNotAllowed Type = "method_not_allowed"
	TypeInternal         Type = "internal_error"
)

type Error struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func Validation(format string, args ...any) *Error {
	return &Error{Type: TypeValidation, Message: fmt.Sprintf(format, args...), Code: http.StatusBadRequest}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Type: TypeUnauthorized, Message: fmt.Sprintf(format, args...), Code: http.StatusUnauthorized}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Type: TypeNotFound, Message: fmt.Sprintf(format, args...), Code: http.StatusNotFound}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Type: TypeForbidden, Message: fmt.Sprintf(format, args...), Code: http.StatusForbidden}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Type: TypeConflict, Message: fmt.Sprintf(format, args...), Code: http.StatusConflict}
}

func MethodNotAllowed(format string, args ...any) *Error {
	return &Error{Type: TypeMethodNotAllowed, Message: fmt.Sprintf(format, args...), Code: http.StatusMethodNotAllowed}
}

func Internal(format string, args ...any) *Error {
	return &Error{Type: TypeInternal, Message: fmt.Sprintf(format, args...), Code: http.StatusInternalServerError}
}

// From extracts the *Error from err, wrapping anything else as an internal
// error so unexpected failures never leak detail to the client.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Type: TypeInternal, Message: "internal error", Code: http.StatusInternalServerError}
}

// IsType reports whether err is an application error of the given type.
func IsType(err error, t Type) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Type == t
}
