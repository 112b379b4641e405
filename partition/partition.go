// Package partition splits treebanks into reproducible subsets: percentage
// train/test splits, genre-major aggregation and nested fixed-size prefixes.
//
// Every function is a pure function of its inputs. Trees are never shuffled,
// so a given file layout always yields the same partitions.
package partition

import (
	"errors"
	"fmt"
	"math"

	"github.com/jamesainslie/go-adapt/tree"
)

// DefaultTrainFraction is the share of each genre assigned to training.
const DefaultTrainFraction = 0.90

// DefaultSeedSizes is the schedule of nested seed-set sizes.
var DefaultSeedSizes = []int{1000, 2000, 3000, 4000, 5000, 7000, 10000, 13000, 17000, 21000}

var (
	// ErrInvalidFraction indicates a train fraction outside [0, 1].
	ErrInvalidFraction = errors.New("partition: train fraction must be within [0, 1]")

	// ErrInsufficientData indicates an exact size larger than the available data.
	ErrInsufficientData = errors.New("partition: insufficient data")

	// ErrInvalidSizes indicates a seed schedule that is not strictly increasing and positive.
	ErrInvalidSizes = errors.New("partition: seed sizes must be positive and strictly increasing")
)

// InsufficientDataError reports an exact-size request that cannot be met.
type InsufficientDataError struct {
	Requested int
	Available int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%v: requested %d trees, only %d available", ErrInsufficientData, e.Requested, e.Available)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// TrainSize returns floor(size * fraction).
func TrainSize(size int, fraction float64) int {
	return int(math.Floor(float64(size) * fraction))
}

// Split assigns the first floor(n*trainFraction) trees of bank to train and
// the rest to test, in source order.
func Split(bank *tree.Treebank, trainFraction float64) (train, test *tree.Treebank, err error) {
	if math.IsNaN(trainFraction) || trainFraction < 0 || trainFraction > 1 {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFraction, trainFraction)
	}
	n := TrainSize(bank.Len(), trainFraction)
	return bank.Slice(0, n), bank.Slice(n, bank.Len()), nil
}

// Aggregate splits every genre independently and concatenates the train parts
// in genre order, then the test parts likewise. Genres are never interleaved.
func Aggregate(genres []*tree.Treebank, trainFraction float64) (train, test *tree.Treebank, err error) {
	trains := make([]*tree.Treebank, 0, len(genres))
	tests := make([]*tree.Treebank, 0, len(genres))
	for i, g := range genres {
		tr, te, err := Split(g, trainFraction)
		if err != nil {
			return nil, nil, fmt.Errorf("genre %d: %w", i, err)
		}
		trains = append(trains, tr)
		tests = append(tests, te)
	}
	return tree.Concat(trains...), tree.Concat(tests...), nil
}

// TakePrefix returns the first min(n, size) trees of bank. For n1 < n2,
// TakePrefix(bank, n1) is always a prefix of TakePrefix(bank, n2).
func TakePrefix(bank *tree.Treebank, n int) *tree.Treebank {
	n = max(0, min(n, bank.Len()))
	return bank.Slice(0, n)
}

// TakeExact is TakePrefix that fails when bank holds fewer than n trees.
func TakeExact(bank *tree.Treebank, n int) (*tree.Treebank, error) {
	if n > bank.Len() {
		return nil, &InsufficientDataError{Requested: n, Available: bank.Len()}
	}
	return TakePrefix(bank, n), nil
}

// ValidateSizes checks that sizes are positive and strictly increasing, which
// makes the resulting prefixes strictly nested.
func ValidateSizes(sizes []int) error {
	if len(sizes) == 0 {
		return fmt.Errorf("%w: empty schedule", ErrInvalidSizes)
	}
	for i, s := range sizes {
		if s <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidSizes, s)
		}
		if i > 0 && s <= sizes[i-1] {
			return fmt.Errorf("%w: %d after %d", ErrInvalidSizes, s, sizes[i-1])
		}
	}
	return nil
}

// Overlap returns the indices in a of trees that also occur (by pointer
// identity) in b. Disjoint partitions of one source return nothing.
func Overlap(a, b *tree.Treebank) []int {
	seen := make(map[*tree.Tree]struct{}, b.Len())
	for _, t := range b.All() {
		seen[t] = struct{}{}
	}
	var out []int
	for i, t := range a.All() {
		if _, ok := seen[t]; ok {
			out = append(out, i)
		}
	}
	return out
}
