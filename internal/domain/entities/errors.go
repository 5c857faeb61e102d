package entities

import (
	"errors"
	"fmt"
)

// Error kinds. Every service failure wraps exactly one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// Common errors
var (
	ErrUserNotFound       = NewError(ErrNotFound, "User not found")
	ErrTaskNotFound       = NewError(ErrNotFound, "Task not found")
	ErrTagNotFound        = NewError(ErrNotFound, "Tag not found")
	ErrFolderNotFound     = NewError(ErrNotFound, "Folder not found")
	ErrImageNotFound      = NewError(ErrNotFound, "Image not found")
	ErrInvalidCredentials = NewError(ErrUnauthorized, "Invalid credentials")
	ErrInvalidToken       = NewError(ErrUnauthorized, "Invalid token")
	ErrInvalidTags        = NewError(ErrBadRequest, "Invalid tag(s)")
	ErrInvalidFolder      = NewError(ErrBadRequest, "Invalid folder")
)

// Error is a client-facing failure: Message is safe to return in a response body
type Error struct {
	Kind    error
	Message string
}

// NewError builds an Error of the given kind
func NewError(kind error, format string, args ...interface{}) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Message: msg}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Validation returns an ErrValidation error
func Validation(format string, args ...interface{}) *Error {
	return NewError(ErrValidation, format, args...)
}

// Conflict returns an ErrConflict error
func Conflict(format string, args ...interface{}) *Error {
	return NewError(ErrConflict, format, args...)
}

// BadRequest returns an ErrBadRequest error
func BadRequest(format string, args ...interface{}) *Error {
	return NewError(ErrBadRequest, format, args...)
}

// Forbidden returns an ErrForbidden error
func Forbidden(format string, args ...interface{}) *Error {
	return NewError(ErrForbidden, format, args...)
}
