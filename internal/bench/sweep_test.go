package bench

import (
	"context"
	"errors"
	"testing"

	adapt "github.com/jamesainslie/go-adapt"
)

func trial(size int, f1 float64, err error) Trial {
	return Trial{
		SeedSize: size,
		Run: func(context.Context) (adapt.Report, error) {
			if err != nil {
				return adapt.Report{}, err
			}
			return adapt.Report{Sentences: 10, F1: f1}, nil
		},
	}
}

func TestSeedSweep(t *testing.T) {
	boom := errors.New("boom")
	trials := []Trial{
		trial(3000, 0.70, nil),
		trial(1000, 0.60, nil),
		trial(2000, 0, boom),
		trial(4000, 0.70, nil),
	}

	results, err := SeedSweep(context.Background(), trials)
	if err != nil {
		t.Fatalf("SeedSweep() error = %v", err)
	}

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, want := range []int{1000, 2000, 3000, 4000} {
		if results[i].SeedSize != want {
			t.Errorf("results[%d].SeedSize = %d, want %d", i, results[i].SeedSize, want)
		}
	}
	if !errors.Is(results[1].Err, boom) {
		t.Errorf("results[1].Err = %v, want boom", results[1].Err)
	}

	best, ok := Best(results)
	if !ok || best.SeedSize != 3000 {
		t.Errorf("Best() = %+v, %v; want seed size 3000", best, ok)
	}

	failures := Failures(results)
	if !errors.Is(failures, boom) {
		t.Errorf("Failures() = %v, want boom", failures)
	}
}

func TestSeedSweep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	trials := []Trial{
		{SeedSize: 1, Run: func(context.Context) (adapt.Report, error) {
			cancel()
			return adapt.Report{}, context.Canceled
		}},
		trial(2, 0.5, nil),
	}

	results, err := SeedSweep(ctx, trials)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestBest_AllFailed(t *testing.T) {
	results := []SweepResult{{SeedSize: 1, Err: errors.New("x")}}
	if _, ok := Best(results); ok {
		t.Error("expected no best result")
	}
	if Failures(nil) != nil {
		t.Error("expected nil Failures for no results")
	}
}
