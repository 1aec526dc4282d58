package generation

import "errors"

var (
	// ErrNoCollaborator is returned by the deterministic generator for every
	// request.
	ErrNoCollaborator = errors.New("no generation collaborator configured")

	// ErrInvalidOutput indicates a collaborator reply could not be parsed
	// into the expected structure.
	ErrInvalidOutput = errors.New("invalid collaborator output")

	// ErrRetryExhausted indicates all retry attempts failed.
	ErrRetryExhausted = errors.New("collaborator retry attempts exhausted")
)

// retryable reports whether err is worth another attempt.
func retryable(err error) bool {
	return !errors.Is(err, ErrInvalidOutput) &&
		!errors.Is(err, ErrNoCollaborator)
}
