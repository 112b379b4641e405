package bench

import (
	"fmt"

	"github.com/jamesainslie/go-adapt/tree"
)

// lengthBuckets are the upper bounds of the sentence length histogram. The
// last bucket is open.
var lengthBuckets = []int{10, 20, 30, 40, 60}

// Stats describes the size of a treebank.
type Stats struct {
	Sentences  int
	Tokens     int
	MeanLength float64
	MaxLength  int

	// Histogram[i] counts sentences no longer than lengthBuckets[i] and longer
	// than the previous bound; the final entry counts the rest.
	Histogram []int
}

// ComputeStats counts the sentences and tokens of bank.
func ComputeStats(bank *tree.Treebank) Stats {
	s := Stats{Histogram: make([]int, len(lengthBuckets)+1)}
	for _, t := range bank.All() {
		n := len(t.Yield())
		s.Sentences++
		s.Tokens += n
		s.MaxLength = max(s.MaxLength, n)
		s.Histogram[bucket(n)]++
	}
	if s.Sentences > 0 {
		s.MeanLength = float64(s.Tokens) / float64(s.Sentences)
	}
	return s
}

// BucketLabels returns the display labels of the histogram buckets.
func BucketLabels() []string {
	labels := make([]string, 0, len(lengthBuckets)+1)
	lo := 0
	for _, hi := range lengthBuckets {
		labels = append(labels, fmt.Sprintf("%d-%d", lo, hi))
		lo = hi + 1
	}
	return append(labels, fmt.Sprintf("%d+", lo))
}

func bucket(n int) int {
	for i, hi := range lengthBuckets {
		if n <= hi {
			return i
		}
	}
	return len(lengthBuckets)
}
