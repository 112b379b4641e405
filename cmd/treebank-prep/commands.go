package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jamesainslie/go-adapt/corpus"
	"github.com/jamesainslie/go-adapt/internal/bench"
	"github.com/jamesainslie/go-adapt/internal/cmdutil"
	"github.com/jamesainslie/go-adapt/internal/config"
	"github.com/jamesainslie/go-adapt/internal/prep"
	"github.com/jamesainslie/go-adapt/tree"
)

func corpusFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "corpus",
		Usage: "treebank path, or the name of a corpus block in the config",
	}
}

func selectorFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "selector",
		Usage: "file selector: all, ext:.mrg, sections:02-21, genres:a,b, !<selector>",
	}
}

func exactFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "exact",
		Usage: "fail when a size cannot be filled instead of truncating",
	}
}

func progressFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "progress",
		Value: true,
		Usage: "show progress bars",
	}
}

func splitCommand(env *cmdutil.Env) *cli.Command {
	return &cli.Command{
		Name:  "split",
		Usage: "split every genre into train and test and write nested seed sets",
		Flags: []cli.Flag{
			corpusFlag(), selectorFlag(), exactFlag(), progressFlag(),
			&cli.StringFlag{Name: "out-prefix", Usage: "prefix of the output files"},
			&cli.Float64Flag{Name: "fraction", Usage: "share of each genre used for training"},
			&cli.IntSliceFlag{Name: "sizes", Usage: "seed set sizes, e.g. 1000,2000"},
		},
		Action: func(c *cli.Context) error {
			exp := env.Experiment
			src, err := resolveCorpus(c, exp)
			if err != nil {
				return err
			}
			sel, err := src.ParseSelector()
			if err != nil {
				return err
			}

			opts := prep.Options{
				Corpus:        src.Path,
				Prefix:        c.String("out-prefix"),
				TrainFraction: src.Fraction(),
				Sizes:         exp.SeedSizes(),
				Exact:         c.Bool("exact"),
				Selector:      sel,
				Logger:        env.Logger,
			}
			if exp.Seeds != nil {
				opts.Prefix = cmdutil.String(c, "out-prefix", exp.Seeds.Prefix)
				if !c.IsSet("exact") {
					opts.Exact = exp.Seeds.Exact
				}
			}
			if c.IsSet("fraction") {
				opts.TrainFraction = c.Float64("fraction")
			}
			if c.IsSet("sizes") {
				opts.Sizes = c.IntSlice("sizes")
			}
			if opts.Prefix == "" {
				return cmdutil.Required("out-prefix")
			}

			bars := newLoadBars(c.Bool("progress"), env.UI.Err)
			opts.OnLoad = bars.update
			opts.OnWrite = func(path string, size int) {
				bars.stop()
				_, _ = fmt.Fprintf(env.UI.Out, "wrote %s (%d trees)\n", path, size)
			}

			res, err := prep.BuildSplit(c.Context, opts)
			bars.stop()

			var seedErrs prep.SeedErrors
			if errors.As(err, &seedErrs) {
				for _, se := range seedErrs {
					_, _ = fmt.Fprintf(env.UI.Out, "failed seed %d: %v\n", se.Size, se.Err)
				}
				return fmt.Errorf("%d of %d seed sets failed", len(seedErrs), len(opts.Sizes))
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(env.UI.Out, "genres: %s\n", strings.Join(res.Genres, " "))
			return nil
		},
	}
}

func prefixCommand(env *cmdutil.Env) *cli.Command {
	return &cli.Command{
		Name:  "prefix",
		Usage: "write the first N trees of a corpus",
		Flags: []cli.Flag{
			corpusFlag(), selectorFlag(), exactFlag(), progressFlag(),
			&cli.IntFlag{Name: "size", Usage: "number of trees"},
			&cli.StringFlag{Name: "out", Usage: "output file"},
		},
		Action: func(c *cli.Context) error {
			src, err := resolveCorpus(c, env.Experiment)
			if err != nil {
				return err
			}
			sel, err := src.ParseSelector()
			if err != nil {
				return err
			}
			if !c.IsSet("size") {
				return cmdutil.Required("size")
			}
			if c.String("out") == "" {
				return cmdutil.Required("out")
			}

			bars := newLoadBars(c.Bool("progress"), env.UI.Err)
			out, err := prep.BuildPrefix(c.Context, prep.PrefixOptions{
				Corpus:   src.Path,
				Out:      c.String("out"),
				Size:     c.Int("size"),
				Exact:    c.Bool("exact"),
				Selector: sel,
				Logger:   env.Logger,
				OnLoad:   bars.update,
			})
			bars.stop()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(env.UI.Out, "wrote %s (%d trees)\n", out.Path, out.Size)
			return nil
		},
	}
}

func confirmCommand(env *cmdutil.Env) *cli.Command {
	return &cli.Command{
		Name:  "confirm",
		Usage: "check that a written treebank reads back with the expected size",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "treebank file"},
			&cli.IntFlag{Name: "size", Usage: "expected number of trees"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("file")
			if path == "" {
				return cmdutil.Required("file")
			}
			if !c.IsSet("size") {
				return cmdutil.Required("size")
			}
			if err := corpus.ConfirmSize(path, c.Int("size"), corpus.WithLogger(env.Logger)); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(env.UI.Out, "ok %s (%d trees)\n", path, c.Int("size"))
			return nil
		},
	}
}

func statsCommand(env *cmdutil.Env) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "print tree, token and sentence length counts per genre",
		Flags: []cli.Flag{corpusFlag(), selectorFlag()},
		Action: func(c *cli.Context) error {
			src, err := resolveCorpus(c, env.Experiment)
			if err != nil {
				return err
			}
			sel, err := src.ParseSelector()
			if err != nil {
				return err
			}
			opts := []corpus.Option{corpus.WithSelector(sel), corpus.WithLogger(env.Logger)}

			info, err := os.Stat(src.Path)
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %s", corpus.ErrCorpusNotFound, src.Path)
			}
			if err != nil {
				return err
			}
			var genres []corpus.Genre
			if info.IsDir() {
				genres, err = corpus.LoadGenres(src.Path, opts...)
			} else {
				var bank *tree.Treebank
				bank, err = corpus.Load(src.Path, opts...)
				genres = []corpus.Genre{{Name: info.Name(), Bank: bank}}
			}
			if err != nil {
				return err
			}
			printStats(env.UI.Out, genres)
			return nil
		},
	}
}

func printStats(w io.Writer, genres []corpus.Genre) {
	_, _ = fmt.Fprintf(w, "%-20s %10s %10s %8s %6s\n", "genre", "sentences", "tokens", "mean", "max")
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 58))

	banks := make([]*tree.Treebank, len(genres))
	for i, g := range genres {
		banks[i] = g.Bank
		printStatsRow(w, g.Name, bench.ComputeStats(g.Bank))
	}
	total := bench.ComputeStats(tree.Concat(banks...))
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 58))
	printStatsRow(w, "total", total)

	_, _ = fmt.Fprintln(w)
	for i, label := range bench.BucketLabels() {
		_, _ = fmt.Fprintf(w, "%-8s %d\n", label, total.Histogram[i])
	}
}

func printStatsRow(w io.Writer, name string, s bench.Stats) {
	_, _ = fmt.Fprintf(w, "%-20s %10d %10d %8.2f %6d\n", name, s.Sentences, s.Tokens, s.MeanLength, s.MaxLength)
}

// resolveCorpus picks the corpus named or located by --corpus, falling back
// to the first corpus block of the experiment. --selector overrides the
// block's selector.
func resolveCorpus(c *cli.Context, exp *config.Experiment) (config.Corpus, error) {
	var src config.Corpus
	switch name := c.String("corpus"); {
	case name != "":
		var ok bool
		if src, ok = exp.Corpus(name); !ok {
			src = config.Corpus{Name: name, Path: name}
		}
	case len(exp.Corpora) > 0:
		src = exp.Corpora[0]
	default:
		return config.Corpus{}, cmdutil.Required("corpus")
	}
	if c.IsSet("selector") {
		src.Selector = c.String("selector")
	}
	return src, nil
}
