// Package apperr is the error taxonomy shared by services and controllers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	NotFound     Kind = "NOT_FOUND"
	InvalidState Kind = "INVALID_STATE"
	Unavailable  Kind = "UNAVAILABLE"
	Conflict     Kind = "CONFLICT"
	BadInput     Kind = "BAD_INPUT"
)

type codedError struct {
	kind Kind
	msg  string
	err  error
}

func (e *codedError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}
func (e *codedError) Code() Kind    { return e.kind }
func (e *codedError) Unwrap() error { return e.err }

func New(k Kind, msg string) error { return &codedError{kind: k, msg: msg} }

func Newf(k Kind, format string, args ...any) error {
	return &codedError{kind: k, msg: fmt.Sprintf(format, args...)}
}

// Wrap tags err with a kind while keeping it reachable via errors.Is/As.
func Wrap(k Kind, msg string, err error) error { return &codedError{kind: k, msg: msg, err: err} }

// Code extracts the kind; "" means an untyped (internal) failure.
func Code(err error) Kind {
	var ce interface{ Code() Kind }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Message returns the client-safe message of a typed error.
func Message(err error) string {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.msg
	}
	return ""
}
