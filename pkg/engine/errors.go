package engine

import "fmt"

// Error wraps a backend failure with the operation and circuit it
// occurred in, so dispatch-layer logs name the exact variant that
// failed.
type Error struct {
	Op      string
	Circuit string
	Err     error
}

func (e *Error) Error() string {
	if e.Circuit == "" {
		return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("engine %s (%s): %v", e.Op, e.Circuit, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a wrapped engine error.
func Errorf(op, circuit string, format string, args ...any) *Error {
	return &Error{Op: op, Circuit: circuit, Err: fmt.Errorf(format, args...)}
}
