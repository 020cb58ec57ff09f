package surv

import (
	"errors"
	"fmt"
)

// ConvergenceError reports that the Cox fitting procedure failed to
// reach a stable maximum of the partial likelihood. It is returned
// instead of a fit so a degenerate estimate is never presented as a
// converged one.
type ConvergenceError struct {
	// Iterations completed before giving up.
	Iterations int

	// MaxStep is the largest coefficient step at the final iteration.
	MaxStep float64

	// Reason describes the failure (iteration cap, divergence, or a
	// singular information matrix).
	Reason string
}

// Error implements the error interface.
func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("cox model did not converge after %d iterations: %s (max step %.3g)",
		e.Iterations, e.Reason, e.MaxStep)
}

// IsConvergenceError reports whether err is (or wraps) a ConvergenceError.
func IsConvergenceError(err error) bool {
	var ce *ConvergenceError
	return errors.As(err, &ce)
}

// ErrNoSubjects is returned when an estimator receives an empty cohort.
var ErrNoSubjects = errors.New("no subjects in cohort")

// ErrNoEvents is returned when a regression receives a cohort with no
// observed events; the partial likelihood is flat and nothing can be fit.
var ErrNoEvents = errors.New("no observed events in cohort")
