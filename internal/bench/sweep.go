package bench

import (
	"context"
	"errors"
	"fmt"
	"sort"

	adapt "github.com/jamesainslie/go-adapt"
)

// Trial is one self-training experiment at a given seed size.
type Trial struct {
	SeedSize int
	Run      func(ctx context.Context) (adapt.Report, error)
}

// SweepResult holds the outcome of one trial.
type SweepResult struct {
	SeedSize int
	Report   adapt.Report
	Err      error
}

// SeedSweep runs every trial in turn. A failed trial is recorded and the
// sweep moves on; only cancellation stops it early. Results are sorted by
// seed size.
func SeedSweep(ctx context.Context, trials []Trial) ([]SweepResult, error) {
	var results []SweepResult

	for _, trial := range trials {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		report, err := trial.Run(ctx)
		if err != nil && ctx.Err() != nil {
			return results, ctx.Err()
		}
		results = append(results, SweepResult{
			SeedSize: trial.SeedSize,
			Report:   report,
			Err:      err,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SeedSize < results[j].SeedSize
	})

	return results, nil
}

// Best returns the successful result with the highest F1. Ties go to the
// smaller seed.
func Best(results []SweepResult) (SweepResult, bool) {
	var best SweepResult
	found := false
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if !found || r.Report.F1 > best.Report.F1 {
			best = r
			found = true
		}
	}
	return best, found
}

// Failures joins the errors of every failed trial, or returns nil.
func Failures(results []SweepResult) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("seed size %d: %w", r.SeedSize, r.Err))
		}
	}
	return errors.Join(errs...)
}
