package archive

import (
	"strconv"

	"github.com/pkg/errors"
)

// Errors returned by archive operations, use errors.Is to match them.
var (
	ErrSourceNotFound        = errors.New("source not found")
	ErrDestinationUnwritable = errors.New("destination unwritable")
	ErrReadFailure           = errors.New("read failure")
	ErrWriteFailure          = errors.New("write failure")
)

// Error is the error returned when archiving fails. Kind
// is one of the Err* values above, and Path the file
// or directory which caused it.
type Error struct {
	Kind error
	Path string
	Err  error
}

// Error implementation.
func (e *Error) Error() string {
	s := e.Kind.Error()

	if e.Path != "" {
		s += " " + strconv.Quote(e.Path)
	}

	if e.Err != nil {
		s += ": " + e.Err.Error()
	}

	return s
}

// Is matches the error kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause implements the pkg/errors causer interface.
func (e *Error) Cause() error {
	return e.Err
}

// newError returns an *Error of kind with the cause wrapped in msg.
func newError(kind error, path string, err error, msg string) *Error {
	if err != nil && msg != "" {
		err = errors.Wrap(err, msg)
	}

	return &Error{
		Kind: kind,
		Path: path,
		Err:  err,
	}
}
