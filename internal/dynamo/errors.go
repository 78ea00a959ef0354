package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration calls.
var (
	// ErrInvalidSpan indicates an empty, reversed or non-finite time span.
	ErrInvalidSpan = errors.New("dynamo: time span must satisfy end > start")

	// ErrStepCount indicates a non-positive number of steps.
	ErrStepCount = errors.New("dynamo: step count must be at least 1")

	// ErrDimensionMismatch indicates a derivative whose length differs from the state.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and derivative")

	// ErrInvalidState indicates a state vector holding NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrEndpointMismatch means the last computed time is not the requested end.
	ErrEndpointMismatch = errors.New("dynamo: final time does not match requested end")

	// ErrRestartMismatch means a restart bundle does not sit on the requested grid.
	ErrRestartMismatch = errors.New("dynamo: restart bundle inconsistent with span")

	// ErrShortHistory means fewer than four history samples remain for a multistep update.
	ErrShortHistory = errors.New("dynamo: multistep update needs four history samples")

	// ErrStartFactor indicates a bootstrap refinement factor below one.
	ErrStartFactor = errors.New("dynamo: start factor must be at least 1")
)

// StepError wraps a failure with the grid position where it happened.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
