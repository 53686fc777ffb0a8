package errors

import (
	stderrors "errors"
	"fmt"
)

// Class is the category of a fatal error.
type Class int

const (
	// ClassUnknown is reported for errors that were never classified.
	ClassUnknown Class = iota
	// ClassArgument is a missing or invalid command line input.
	ClassArgument
	// ClassIO is a file that could not be opened, read or written.
	ClassIO
	// ClassService is a non-success status from the code-object service.
	ClassService
	// ClassFormat is a metadata node of an unexpected kind.
	ClassFormat
)

func (c Class) String() string {
	switch c {
	case ClassArgument:
		return "argument"
	case ClassIO:
		return "io"
	case ClassService:
		return "service"
	case ClassFormat:
		return "format"
	default:
		return "unknown"
	}
}

// Error is a classified, fatal error. Nothing in a run recovers from one.
type Error struct {
	Class Class
	// Op names the failing operation, e.g. "get metadata list size".
	Op string
	// Code is the service status for ClassService and the node kind for ClassFormat.
	Code int
	Err  error
}

func (e *Error) Error() string {
	switch e.Class {
	case ClassService:
		if e.Err != nil {
			return fmt.Sprintf("Error(%d): %s: %v", e.Code, e.Op, e.Err)
		}
		return fmt.Sprintf("Error(%d): %s", e.Code, e.Op)
	case ClassFormat:
		return fmt.Sprintf("%s %d", e.Op, e.Code)
	}
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Argument reports invalid command line input.
func Argument(msg string) error {
	return &Error{Class: ClassArgument, Op: msg}
}

// IO wraps a file system failure.
func IO(op string, err error) error {
	return &Error{Class: ClassIO, Op: op, Err: err}
}

// Service wraps a failure reported by the code-object service together with
// the status code the service returned.
func Service(op string, code int, err error) error {
	return &Error{Class: ClassService, Op: op, Code: code, Err: err}
}

// Format reports a metadata node whose kind is outside String, List and Map.
func Format(op string, kind int) error {
	return &Error{Class: ClassFormat, Op: op, Code: kind}
}

// ClassOf returns the class of the outermost classified error in err's chain.
func ClassOf(err error) Class {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Class
	}
	return ClassUnknown
}

// ExitCode maps err to the process exit status: 0 on success, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
