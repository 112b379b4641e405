package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/urfave/cli/v2"

	adapt "github.com/jamesainslie/go-adapt"
	"github.com/jamesainslie/go-adapt/corpus"
	"github.com/jamesainslie/go-adapt/internal/cmdutil"
	"github.com/jamesainslie/go-adapt/internal/config"
	"github.com/jamesainslie/go-adapt/internal/ledger"
	"github.com/jamesainslie/go-adapt/pcfg"
	"github.com/jamesainslie/go-adapt/tree"
)

func poolFlag() cli.Flag {
	return &cli.StringFlag{Name: "pool", Usage: "unlabeled target-domain treebank (gold trees are hidden)"}
}

func testFlag() cli.Flag {
	return &cli.StringFlag{Name: "test", Usage: "held-out test treebank"}
}

func workersFlag() cli.Flag {
	return &cli.IntFlag{Name: "workers", Usage: "parallel parses (default: number of CPUs)"}
}

func ledgerFlag() cli.Flag {
	return &cli.StringFlag{Name: "ledger", Usage: "record results in this SQLite database"}
}

func trainingFlags() []cli.Flag {
	def := adapt.DefaultTrainingConfig()
	return []cli.Flag{
		&cli.BoolFlag{Name: "parent-annotation", Value: def.ParentAnnotation, Usage: "annotate phrasal labels with their parent"},
		&cli.IntFlag{Name: "horizontal-markov", Value: def.HorizontalMarkov, Usage: "sibling context kept when binarizing (-1 keeps all)"},
		&cli.IntFlag{Name: "unknown-threshold", Value: def.UnknownThreshold, Usage: "words seen this often or less also train unknown-word classes"},
		&cli.IntFlag{Name: "max-sentence-length", Value: def.MaxSentenceLength, Usage: "skip longer sentences when parsing (0 for no limit)"},
		&cli.Float64Flag{Name: "smoothing", Value: def.Smoothing, Usage: "weight of unknown-word classes for unseen words"},
	}
}

// trainingConfig overlays training flags set on the command line on the
// experiment's training block.
func trainingConfig(c *cli.Context, exp *config.Experiment) (adapt.TrainingConfig, error) {
	cfg, err := exp.TrainingConfig()
	if err != nil {
		return cfg, err
	}
	if c.IsSet("parent-annotation") {
		cfg.ParentAnnotation = c.Bool("parent-annotation")
	}
	if c.IsSet("horizontal-markov") {
		cfg.HorizontalMarkov = c.Int("horizontal-markov")
	}
	if c.IsSet("unknown-threshold") {
		cfg.UnknownThreshold = c.Int("unknown-threshold")
	}
	if c.IsSet("max-sentence-length") {
		cfg.MaxSentenceLength = c.Int("max-sentence-length")
	}
	if c.IsSet("smoothing") {
		cfg.Smoothing = c.Float64("smoothing")
	}
	return cfg, cfg.Validate()
}

func selfTrainBlock(exp *config.Experiment) config.SelfTrain {
	if exp.SelfTrain == nil {
		return config.SelfTrain{}
	}
	return *exp.SelfTrain
}

func workers(c *cli.Context, exp *config.Experiment) int {
	n := cmdutil.Int(c, "workers", selfTrainBlock(exp).Workers)
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// inputPath returns the flag value, the configured fallback, or an error
// naming the flag.
func inputPath(c *cli.Context, name, fallback string) (string, error) {
	path := cmdutil.String(c, name, fallback)
	if path == "" {
		return "", cmdutil.Required(name)
	}
	return path, nil
}

func newAdapter(env *cmdutil.Env, cfg adapt.TrainingConfig, n int) *adapt.Adapter {
	engine := pcfg.New(pcfg.WithSessions(n), pcfg.WithLogger(env.Logger))
	return adapt.New(engine,
		adapt.WithWorkers(n),
		adapt.WithTrainingConfig(cfg),
		adapt.WithLogger(env.Logger),
	)
}

func load(env *cmdutil.Env, path string) (*tree.Treebank, error) {
	return corpus.Load(path, corpus.WithLogger(env.Logger))
}

// openLedger opens the ledger named by --ledger or the config, or returns nil
// when neither names one.
func openLedger(c *cli.Context, exp *config.Experiment) (*ledger.Ledger, error) {
	var fallback string
	if exp.Ledger != nil {
		fallback = exp.Ledger.Path
	}
	path := cmdutil.String(c, "ledger", fallback)
	if path == "" {
		return nil, nil
	}
	return ledger.Open(path, 1)
}

func closeModel(m adapt.Model) {
	if c, ok := m.(io.Closer); ok {
		_ = c.Close()
	}
}

func saveModel(m adapt.Model, path string) error {
	pm, ok := m.(*pcfg.Model)
	if !ok {
		return fmt.Errorf("model %T cannot be saved", m)
	}
	return pm.Grammar().Save(path)
}

func printHeader(w io.Writer, cfg adapt.TrainingConfig, seed, pool, test string) {
	rule := strings.Repeat("-", 33)
	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintln(w, "Running Domain Adaptation")
	_, _ = fmt.Fprintln(w, rule)
	_, _ = fmt.Fprintf(w, "Model: PCFG (parent=%t h=%d unk<=%d)\n", cfg.ParentAnnotation, cfg.HorizontalMarkov, cfg.UnknownThreshold)
	_, _ = fmt.Fprintf(w, "Seed Set: %s\n", seed)
	_, _ = fmt.Fprintf(w, "Self-Training Set: %s\n", pool)
	_, _ = fmt.Fprintf(w, "Test Set: %s\n", test)
}

func printReport(w io.Writer, r adapt.Report) {
	_, _ = fmt.Fprintf(w, "Sentences: %d (parsed %d, skipped %d)\n", r.Sentences, r.Parsed, r.Skipped)
	_, _ = fmt.Fprintf(w, "Precision: %.2f  Recall: %.2f  F1: %.2f\n", 100*r.Precision, 100*r.Recall, 100*r.F1)
	_, _ = fmt.Fprintf(w, "Exact: %.2f  Tagging: %.2f\n", 100*r.ExactMatch, 100*r.TaggingAccuracy)
}
