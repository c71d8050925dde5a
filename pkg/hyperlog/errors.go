package hyperlog

import (
	"errors"
	"fmt"
)

var ErrInvalidParameters = errors.New("invalid hyperlog parameters")

// ParamError reports which parameter failed validation.
type ParamError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s = %g %s", ErrInvalidParameters, e.Field, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameters
}
