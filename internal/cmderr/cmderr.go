// Package cmderr defines the error values that cross the boundaries of a
// command invocation: a keyed, user-facing error that is rendered through the
// locale store, and the internal missing-argument signal.
package cmderr

import (
	"errors"
	"fmt"
)

// ErrMissingArg signals that too few arguments are available for a parameter.
// It is control flow, never shown to users: the engine translates it into a
// localized "argument missing" message.
var ErrMissingArg = errors.New("missing argument")

// Error carries a locale-store message key plus format arguments. It is pure
// formatting data, not a fault: converters raise it when an argument cannot
// be parsed, handlers raise it to report an operator-level error.
type Error struct {
	Key  string
	Args []any
}

// New builds a keyed error.
func New(key string, formatArgs ...any) *Error {
	return &Error{Key: key, Args: formatArgs}
}

func (e *Error) Error() string {
	if len(e.Args) == 0 {
		return e.Key
	}
	return fmt.Sprintf("%s %v", e.Key, e.Args)
}

// Keyed unwraps err into an *Error when it is (or wraps) one.
func Keyed(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
