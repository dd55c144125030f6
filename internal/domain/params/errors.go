package params

import (
	"errors"
	"fmt"
)

// Sentinel kinds for parameter errors.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Error reports a rejected parameter value.
type Error struct {
	Name   Name
	Value  any
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %q (%v): %s", ErrInvalidParameter, e.Name, e.Value, e.Reason)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *Error) Unwrap() error { return ErrInvalidParameter }
