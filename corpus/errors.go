package corpus

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrCorpusNotFound indicates the corpus path does not exist.
	ErrCorpusNotFound = errors.New("corpus: path not found")

	// ErrCorpusFormat indicates tree data or a file name that cannot be interpreted.
	ErrCorpusFormat = errors.New("corpus: malformed tree data")

	// ErrWrite indicates a treebank could not be serialized to its destination.
	ErrWrite = errors.New("corpus: write failed")

	// ErrSizeMismatch indicates a reloaded file holds a different number of trees than expected.
	ErrSizeMismatch = errors.New("corpus: size mismatch")
)

// WriteError wraps the I/O failure behind a failed Write.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrWrite, e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }

// SizeMismatchError carries both sides of a failed size check.
type SizeMismatchError struct {
	Path     string
	Expected int
	Actual   int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("%v: %s: expected %d trees, found %d", ErrSizeMismatch, e.Path, e.Expected, e.Actual)
}

func (e *SizeMismatchError) Is(target error) bool {
	return target == ErrSizeMismatch
}
