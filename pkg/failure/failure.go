// Package failure classifies errors raised while answering a request. Every
// kind ends up in the same error envelope; the kind only feeds the logs.
package failure

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindUpstream        Kind = "upstream"
	KindInternal        Kind = "internal"
)

// Error attaches a Kind to a cause. The cause keeps its pkg/errors stack.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Cause() error {
	return e.Err
}

// Format keeps "%+v" printing the stack of the wrapped error.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%+v\n%s", e.Err, e.Kind)
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

func newError(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}

// InvalidArgument reports a positional argument that could not be coerced.
func InvalidArgument(name, value string, cause error) error {
	if cause == nil {
		return newError(KindInvalidArgument, errors.Errorf("invalid %s: %q", name, value))
	}
	return newError(KindInvalidArgument, errors.Wrapf(cause, "invalid %s: %q", name, value))
}

// MissingArgument reports a required positional argument that was not supplied.
func MissingArgument(function string, want []string, got int) error {
	return newError(KindInvalidArgument, errors.Errorf("%s() requires %d arguments %v, got %d", function, len(want), want, got))
}

func NotFound(format string, args ...any) error {
	return newError(KindNotFound, errors.Errorf(format, args...))
}

func Upstream(err error, message string) error {
	return newError(KindUpstream, errors.Wrap(err, message))
}

// Internal wraps a recovered panic value.
func Internal(format string, args ...any) error {
	return newError(KindInternal, errors.Errorf(format, args...))
}

// KindOf returns the outermost Kind in the chain, KindInternal when there is none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Traceback renders the error chain with its stack frames. Errors that never
// went through pkg/errors get the caller's stack attached.
func Traceback(err error) string {
	if err == nil {
		return ""
	}
	var st stackTracer
	if !errors.As(err, &st) {
		err = errors.WithStack(err)
	}
	return fmt.Sprintf("%+v", err)
}
