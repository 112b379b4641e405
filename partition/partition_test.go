package partition

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jamesainslie/go-adapt/tree"
)

// bankOf returns a treebank of n distinct single-word trees labelled prefix0..prefixN-1.
func bankOf(prefix string, n int) *tree.Treebank {
	b := tree.NewTreebank()
	for i := range n {
		b.Add(tree.Node("S", tree.PreTerminal("NN", fmt.Sprintf("%s%d", prefix, i))))
	}
	return b
}

func words(b *tree.Treebank) []string {
	var out []string
	for _, t := range b.All() {
		out = append(out, t.Yield()[0])
	}
	return out
}

func TestSplit_HundredAtNinety(t *testing.T) {
	bank := bankOf("w", 100)
	train, test, err := Split(bank, 0.9)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if train.Len() != 90 || test.Len() != 10 {
		t.Fatalf("sizes = %d/%d, want 90/10", train.Len(), test.Len())
	}
	if diff := cmp.Diff(words(bank)[:90], words(train)); diff != "" {
		t.Errorf("train is not the source prefix (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(words(bank)[90:], words(test)); diff != "" {
		t.Errorf("test is not the source suffix (-want +got):\n%s", diff)
	}
	if o := Overlap(train, test); len(o) != 0 {
		t.Errorf("train and test overlap at %v", o)
	}
}

func TestSplit_Sizes(t *testing.T) {
	fractions := []float64{0, 0.1, 0.25, 0.333, 0.5, 0.9, 0.99, 1}
	for n := 0; n <= 37; n++ {
		bank := bankOf("w", n)
		for _, f := range fractions {
			train, test, err := Split(bank, f)
			if err != nil {
				t.Fatalf("Split(%d, %v) error = %v", n, f, err)
			}
			if train.Len()+test.Len() != n {
				t.Errorf("Split(%d, %v): %d + %d != %d", n, f, train.Len(), test.Len(), n)
			}
			if want := int(math.Floor(float64(n) * f)); train.Len() != want {
				t.Errorf("Split(%d, %v): train = %d, want %d", n, f, train.Len(), want)
			}
		}
	}
}

func TestSplit_InvalidFraction(t *testing.T) {
	for _, f := range []float64{-0.1, 1.01, math.NaN()} {
		_, _, err := Split(bankOf("w", 10), f)
		if !errors.Is(err, ErrInvalidFraction) {
			t.Errorf("Split(%v) error = %v, want ErrInvalidFraction", f, err)
		}
	}
}

func TestAggregate_GenreMajor(t *testing.T) {
	a := bankOf("a", 10)
	b := bankOf("b", 20)
	c := bankOf("c", 5)

	train, test, err := Aggregate([]*tree.Treebank{a, b, c}, 0.9)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	wantTrain := append(append(words(a)[:9], words(b)[:18]...), words(c)[:4]...)
	wantTest := append(append(words(a)[9:], words(b)[18:]...), words(c)[4:]...)
	if diff := cmp.Diff(wantTrain, words(train)); diff != "" {
		t.Errorf("train mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantTest, words(test)); diff != "" {
		t.Errorf("test mismatch (-want +got):\n%s", diff)
	}

	sum := TrainSize(a.Len(), 0.9) + TrainSize(b.Len(), 0.9) + TrainSize(c.Len(), 0.9)
	if train.Len() != sum {
		t.Errorf("train = %d, want sum of genre floors %d", train.Len(), sum)
	}
}

func TestAggregate_InvalidFraction(t *testing.T) {
	_, _, err := Aggregate([]*tree.Treebank{bankOf("a", 3)}, 2)
	if !errors.Is(err, ErrInvalidFraction) {
		t.Errorf("expected ErrInvalidFraction, got: %v", err)
	}
}

func TestTakePrefix_Nested(t *testing.T) {
	bank := bankOf("w", 50)
	for n1 := 0; n1 <= 50; n1 += 7 {
		for n2 := n1 + 1; n2 <= 50; n2 += 5 {
			small := words(TakePrefix(bank, n1))
			large := words(TakePrefix(bank, n2))
			if len(small) != n1 || len(large) != n2 {
				t.Fatalf("sizes %d/%d, want %d/%d", len(small), len(large), n1, n2)
			}
			if diff := cmp.Diff(small, large[:n1]); n1 > 0 && diff != "" {
				t.Errorf("TakePrefix(%d) is not a prefix of TakePrefix(%d):\n%s", n1, n2, diff)
			}
		}
	}
}

func TestTakePrefix_CappedAndExact(t *testing.T) {
	pool := bankOf("p", 15)

	seed10 := TakePrefix(pool, 10)
	seed20 := TakePrefix(pool, 20)
	if diff := cmp.Diff(words(pool)[:10], words(seed10)); diff != "" {
		t.Errorf("seed-10 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(words(pool), words(seed20)); diff != "" {
		t.Errorf("seed-20 should equal the full pool (-want +got):\n%s", diff)
	}

	if _, err := TakeExact(pool, 10); err != nil {
		t.Errorf("TakeExact(10) error = %v", err)
	}
	_, err := TakeExact(pool, 20)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("TakeExact(20) error = %v, want ErrInsufficientData", err)
	}
	var ide *InsufficientDataError
	if !errors.As(err, &ide) || ide.Requested != 20 || ide.Available != 15 {
		t.Errorf("InsufficientDataError = %+v", ide)
	}
}

func TestTakePrefix_Negative(t *testing.T) {
	if got := TakePrefix(bankOf("w", 3), -1).Len(); got != 0 {
		t.Errorf("TakePrefix(-1) = %d trees, want 0", got)
	}
}

func TestValidateSizes(t *testing.T) {
	tests := []struct {
		sizes   []int
		wantErr bool
	}{
		{DefaultSeedSizes, false},
		{[]int{10, 20}, false},
		{nil, true},
		{[]int{0, 10}, true},
		{[]int{10, 10}, true},
		{[]int{20, 10}, true},
	}
	for _, tt := range tests {
		err := ValidateSizes(tt.sizes)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSizes(%v) error = %v, wantErr %v", tt.sizes, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidSizes) {
			t.Errorf("expected ErrInvalidSizes, got %v", err)
		}
	}
}
