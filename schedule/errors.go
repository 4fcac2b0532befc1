package schedule

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the only error kind produced by this package. It is
// returned (wrapped) whenever durations, the processor count, or an
// assignment array violate the schedule invariants.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError describes which check rejected the input.
type ArgumentError struct {
	Op  string
	Msg string
}

func (e *ArgumentError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, ErrInvalidArgument)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, ErrInvalidArgument, e.Msg)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

func invalidf(op, format string, args ...any) error {
	return &ArgumentError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
