package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for oscillator construction and integration.
var (
	// ErrInvalidParameter indicates a physical parameter outside its valid range.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrInvalidStep indicates a non-positive step or an inverted time span.
	ErrInvalidStep = errors.New("dynamo: invalid step")

	// ErrEmptySpan indicates a span too short to hold a single sample.
	ErrEmptySpan = errors.New("dynamo: time span too short for step")

	// ErrInvalidState indicates a non-finite initial condition.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// ParameterError wraps a sentinel error with the offending field.
type ParameterError struct {
	Name    string
	Value   float64
	Wrapped error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s = %g", e.Wrapped.Error(), e.Name, e.Value)
}

func (e *ParameterError) Unwrap() error {
	return e.Wrapped
}

// Kind returns the short name of the sentinel wrapped by err, or "" when err
// is not one of the domain errors.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidParameter):
		return "InvalidParameter"
	case errors.Is(err, ErrInvalidStep):
		return "InvalidStep"
	case errors.Is(err, ErrEmptySpan):
		return "EmptySpan"
	case errors.Is(err, ErrInvalidState):
		return "InvalidState"
	}
	return ""
}
