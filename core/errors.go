package core

import (
	"errors"
	"fmt"
)

// ErrorKind is the caller-visible error taxonomy. Every error that crosses
// the capability boundary carries exactly one kind; raw backend error text
// only survives as the message of an Internal or InvalidArgument error.
type ErrorKind int

const (
	ErrorInternal ErrorKind = iota
	ErrorAlreadyExists
	ErrorNotFound
	ErrorInvalidArgument
	ErrorUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorAlreadyExists:
		return "already_exists"
	case ErrorNotFound:
		return "not_found"
	case ErrorInvalidArgument:
		return "invalid_argument"
	case ErrorUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is a classified database error.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NewErrorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError classifies an underlying error. Already classified errors keep
// their original kind.
func WrapError(kind ErrorKind, err error) *Error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	return &Error{Kind: kind, Message: err.Error(), cause: err}
}

// KindOf returns the kind of a classified error, ErrorInternal for
// everything else.
func KindOf(err error) ErrorKind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return ErrorInternal
}
