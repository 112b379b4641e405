package bench

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jamesainslie/go-adapt/tree"
)

func flatTree(n int) *tree.Tree {
	kids := make([]*tree.Tree, n)
	for i := range kids {
		kids[i] = tree.PreTerminal("NN", "w")
	}
	return tree.Node("ROOT", tree.Node("S", kids...))
}

func TestComputeStats(t *testing.T) {
	bank := tree.NewTreebank(flatTree(4), flatTree(12), flatTree(70), flatTree(10))

	got := ComputeStats(bank)

	want := Stats{
		Sentences:  4,
		Tokens:     96,
		MeanLength: 24,
		MaxLength:  70,
		Histogram:  []int{2, 1, 0, 0, 0, 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeStats() mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	got := ComputeStats(tree.NewTreebank())
	if got.Sentences != 0 || got.MeanLength != 0 {
		t.Errorf("unexpected stats for empty bank: %+v", got)
	}
}

func TestBucketLabels(t *testing.T) {
	got := strings.Join(BucketLabels(), " ")
	if want := "0-10 11-20 21-30 31-40 41-60 61+"; got != want {
		t.Errorf("BucketLabels() = %q, want %q", got, want)
	}
}
