package harness

import (
	"errors"
	"fmt"
)

// Failure kinds of a single run. Any of them aborts the experiment.
var (
	ErrProcess      = errors.New("process failed")
	ErrVerification = errors.New("verification failed")
	ErrExtraction   = errors.New("metric extraction failed")
)

// RunError reports the run (1-based) that aborted an experiment.
type RunError struct {
	Run int
	Err error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %d: %v", e.Run, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
