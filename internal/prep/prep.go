// Package prep builds the experiment datasets: genre-balanced train/test
// splits with nested seed sets, and fixed-size prefixes of a single corpus.
package prep

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jamesainslie/go-adapt/corpus"
	"github.com/jamesainslie/go-adapt/partition"
	"github.com/jamesainslie/go-adapt/tree"
)

// SeedFileName returns the path of the seed set of size n.
func SeedFileName(prefix string, n int) string {
	return fmt.Sprintf("%s_seed_%d.txt", prefix, n)
}

// TrainFileName returns the path of the full training set.
func TrainFileName(prefix string) string {
	return prefix + "_train.txt"
}

// TestFileName returns the path of the held-out test set.
func TestFileName(prefix string) string {
	return prefix + "_test.txt"
}

// Options configures BuildSplit.
type Options struct {
	// Corpus is a directory of genre subdirectories.
	Corpus string

	// Prefix is prepended to every output file name and may include a
	// directory.
	Prefix string

	TrainFraction float64
	Sizes         []int

	// Exact fails a seed size the training split cannot fill instead of
	// writing a shorter seed set.
	Exact bool

	Selector corpus.Selector
	Logger   *slog.Logger

	// OnLoad is called after each corpus file is read.
	OnLoad func(done, total int, name string)

	// OnWrite is called after each output file is written and confirmed.
	OnWrite func(path string, size int)
}

// SeedError records a seed size that could not be built.
type SeedError struct {
	Size int
	Err  error
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("seed size %d: %v", e.Size, e.Err)
}

func (e *SeedError) Unwrap() error { return e.Err }

// SeedErrors lists every seed size that failed.
type SeedErrors []*SeedError

func (e SeedErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e SeedErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}
	return errs
}

// Output is one file written by a build.
type Output struct {
	Path string
	Size int
}

// Result summarizes a split build.
type Result struct {
	Genres []string
	Train  Output
	Test   Output
	Seeds  []Output
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o *Options) loadOptions() []corpus.Option {
	opts := []corpus.Option{corpus.WithSelector(o.Selector), corpus.WithLogger(o.logger())}
	if o.OnLoad != nil {
		opts = append(opts, corpus.WithProgress(o.OnLoad))
	}
	return opts
}

// BuildSplit loads every genre under opts.Corpus, splits each one into train
// and test by opts.TrainFraction, and writes a seed set for every size from
// the front of the aggregate training split, followed by the test and full
// training sets. Seed failures do not stop the build; they are returned
// together as SeedErrors once everything else has been written.
func BuildSplit(ctx context.Context, opts Options) (*Result, error) {
	log := opts.logger()
	if err := partition.ValidateSizes(opts.Sizes); err != nil {
		return nil, err
	}

	genres, err := corpus.LoadGenres(opts.Corpus, opts.loadOptions()...)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	banks := make([]*tree.Treebank, len(genres))
	for i, g := range genres {
		res.Genres = append(res.Genres, g.Name)
		banks[i] = g.Bank
	}

	train, test, err := partition.Aggregate(banks, opts.TrainFraction)
	if err != nil {
		return nil, err
	}
	log.Info("split corpus",
		"path", opts.Corpus,
		"genres", len(genres),
		"train", train.Len(),
		"test", test.Len(),
	)

	var seedErrs SeedErrors
	for _, n := range opts.Sizes {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		out, err := opts.writeSeed(train, n)
		if err != nil {
			log.Error("building seed set", "size", n, "error", err)
			seedErrs = append(seedErrs, &SeedError{Size: n, Err: err})
			continue
		}
		res.Seeds = append(res.Seeds, out)
	}

	log.Info("building test corpus")
	if res.Test, err = opts.write(test, TestFileName(opts.Prefix)); err != nil {
		return res, err
	}
	log.Info("building entire train corpus")
	if res.Train, err = opts.write(train, TrainFileName(opts.Prefix)); err != nil {
		return res, err
	}

	if len(seedErrs) > 0 {
		return res, seedErrs
	}
	return res, nil
}

func (o *Options) writeSeed(train *tree.Treebank, n int) (Output, error) {
	seed := partition.TakePrefix(train, n)
	if o.Exact {
		var err error
		if seed, err = partition.TakeExact(train, n); err != nil {
			return Output{}, err
		}
	} else if seed.Len() < n {
		o.logger().Warn("seed set truncated", "expected", n, "actual", seed.Len())
	}

	out, err := o.write(seed, SeedFileName(o.Prefix, n))
	if err != nil {
		return Output{}, err
	}
	o.logger().Info("built seed set", "size", n, "path", out.Path)
	return out, nil
}

func (o *Options) write(bank *tree.Treebank, path string) (Output, error) {
	if err := corpus.WriteConfirmed(bank, path, corpus.WithLogger(o.logger())); err != nil {
		return Output{}, err
	}
	if o.OnWrite != nil {
		o.OnWrite(path, bank.Len())
	}
	return Output{Path: path, Size: bank.Len()}, nil
}

// PrefixOptions configures BuildPrefix.
type PrefixOptions struct {
	// Corpus is a treebank file or directory.
	Corpus string
	Out    string
	Size   int

	// Exact fails when the corpus holds fewer than Size trees instead of
	// writing all of them.
	Exact bool

	Selector corpus.Selector
	Logger   *slog.Logger
	OnLoad   func(done, total int, name string)
}

// BuildPrefix writes the first opts.Size trees of a corpus to opts.Out.
func BuildPrefix(ctx context.Context, opts PrefixOptions) (Output, error) {
	o := Options{
		Selector: opts.Selector,
		Logger:   opts.Logger,
		OnLoad:   opts.OnLoad,
		Exact:    opts.Exact,
	}
	if opts.Size < 0 {
		return Output{}, fmt.Errorf("%w: %d", partition.ErrInvalidSizes, opts.Size)
	}

	bank, err := corpus.Load(opts.Corpus, o.loadOptions()...)
	if err != nil {
		return Output{}, err
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	prefix := partition.TakePrefix(bank, opts.Size)
	if opts.Exact {
		if prefix, err = partition.TakeExact(bank, opts.Size); err != nil {
			return Output{}, err
		}
	}
	return o.write(prefix, opts.Out)
}
