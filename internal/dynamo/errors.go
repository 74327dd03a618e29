package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfiguration indicates a system that cannot be simulated:
	// non-positive step, no bodies, or a body with non-positive mass.
	ErrInvalidConfiguration = errors.New("dynamo: invalid configuration")

	// ErrNumericalSingularity indicates two distinct bodies at zero separation.
	ErrNumericalSingularity = errors.New("dynamo: numerical singularity (zero separation)")

	// ErrSimulationDivergence indicates a NaN or Inf in a body's state after a step.
	ErrSimulationDivergence = errors.New("dynamo: simulation diverged (NaN or Inf detected)")
)

// ConfigError wraps ErrInvalidConfiguration with the offending field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfiguration, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// Invalid returns a ConfigError for field.
func Invalid(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// PairError records the pair of bodies involved in a failed force evaluation.
type PairError struct {
	Target, Other int
	Wrapped       error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("bodies %d and %d: %v", e.Target, e.Other, e.Wrapped)
}

func (e *PairError) Unwrap() error {
	return e.Wrapped
}

// StepError wraps an error with simulation context.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
