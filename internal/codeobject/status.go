package codeobject

import (
	"errors"
	"fmt"
)

// Status is a status code reported by the code-object service.
type Status int

const (
	StatusSuccess         Status = 0
	StatusError           Status = 1
	StatusInvalidArgument Status = 2
	StatusOutOfResources  Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusOutOfResources:
		return "out of resources"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Error is an error carrying the service status that caused it.
type Error struct {
	Status Status
	Msg    string
	Err    error
}

// Errorf returns a *Error with a formatted message.
func Errorf(status Status, format string, args ...any) *Error {
	return &Error{Status: status, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns a *Error wrapping err.
func Wrap(status Status, msg string, err error) *Error {
	return &Error{Status: status, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf returns the service status carried by err. Errors without one
// report StatusError; a nil error reports StatusSuccess.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Status
	}
	return StatusError
}
