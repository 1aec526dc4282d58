package pipeline

import (
	"errors"
	"fmt"
)

// ErrConfigRequired is returned when Run is called without a project config.
var ErrConfigRequired = errors.New("pipeline: project config is required")

// PhaseError reports the phase that aborted a run.
type PhaseError struct {
	Phase int
	Name  string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %d (%s): %v", e.Phase, e.Name, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

func phaseError(n int, err error) *PhaseError {
	return &PhaseError{Phase: n, Name: PhaseName(n), Err: err}
}
