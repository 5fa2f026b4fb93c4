package pipeline

import "fmt"

// FatalError aborts the orchestrator run: the score snapshot could not be
// recorded and nothing downstream is meaningful without it. The scan is
// left degraded for retry.
type FatalError struct {
	Step string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal pipeline failure at %s: %v", e.Step, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// StepError is a recoverable failure in one best-effort step. It is
// logged and counted; the pipeline continues.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
