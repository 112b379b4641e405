package adapt

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrTraining indicates the engine rejected the configuration or the input.
	ErrTraining = errors.New("adapt: training failed")

	// ErrParseFailure indicates a model produced no tree for a sentence.
	ErrParseFailure = errors.New("adapt: no parse")

	// ErrInvalidTransition indicates a Run was driven out of order.
	ErrInvalidTransition = errors.New("adapt: invalid state transition")

	// ErrEmptyTreebank indicates a training treebank without trees.
	ErrEmptyTreebank = errors.New("adapt: empty treebank")

	// ErrIncompleteReport indicates an engine scored fewer sentences than the
	// test treebank holds.
	ErrIncompleteReport = errors.New("adapt: incomplete evaluation report")
)

// TrainingError records which training stage failed.
type TrainingError struct {
	Stage string // "seed", "final" or "baseline"
	Err   error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("%v (%s): %v", ErrTraining, e.Stage, e.Err)
}

func (e *TrainingError) Unwrap() []error { return []error{ErrTraining, e.Err} }

// IncompleteReportError carries both counts of a report that does not cover
// the whole test treebank.
type IncompleteReportError struct {
	Expected int
	Actual   int
}

func (e *IncompleteReportError) Error() string {
	return fmt.Sprintf("%v: expected %d sentences, scored %d", ErrIncompleteReport, e.Expected, e.Actual)
}

func (e *IncompleteReportError) Is(target error) bool {
	return target == ErrIncompleteReport
}
