package engine

import "fmt"

// EvaluationError reports a scan that could not complete: the dataset failed to read or the
// request was cancelled. No partial result accompanies it.
type EvaluationError struct {
	Dataset string
	Err     error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation of dataset %s failed: %s", e.Dataset, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
