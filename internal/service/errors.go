package service

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindState
)

// Error is a domain failure the caller can act on. Anything else is a server error.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

func notFoundError(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func forbiddenError(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

func stateError(format string, args ...interface{}) *Error {
	return newError(KindState, format, args...)
}

// AsError unwraps err into a domain error, if it is one.
func AsError(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

func conflictError(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

func unauthorizedError(format string, args ...interface{}) *Error {
	return newError(KindUnauthorized, format, args...)
}
