package domain

import (
    "errors"
    "fmt"
)

// ErrInvalidTransition marks a transition outside the job state machine.
// It signals a programming or consistency error, not a user-facing failure.
var ErrInvalidTransition = errors.New("invalid job transition")

// ValidTransition enforces the allowed job state machine edges.
func ValidTransition(from, to JobStatus) bool {
    switch from {
    case StatusQueued:
        return to == StatusRunning
    case StatusRunning:
        // succeeded on completion; back to queued on a retryable error;
        // failed once retries are exhausted.
        return to == StatusSucceeded || to == StatusQueued || to == StatusFailed
    default:
        return false
    }
}

// TransitionError builds the consistency error for an illegal edge.
func TransitionError(from, to JobStatus) error {
    return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
