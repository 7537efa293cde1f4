package program

import (
	"errors"
	"fmt"
)

// ErrUnknownDefinition is wrapped by every reference to a path that is not
// declared in the program.
var ErrUnknownDefinition = errors.New("unknown definition")

// TypeError reports a malformed type expression.
type TypeError struct {
	Src string
	Err error
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type %q: %v", e.Src, e.Err)
}

func (e *TypeError) Unwrap() error { return e.Err }
