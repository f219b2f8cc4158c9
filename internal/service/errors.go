package service

import "errors"

// Error kinds. Handlers match them with errors.Is to pick a status code.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a business-rule failure with a message safe to show the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func notFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

func badRequest(msg string) error {
	return &Error{Kind: ErrBadRequest, Message: msg}
}

func unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Message: msg}
}
