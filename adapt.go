package adapt

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/go-adapt/tree"
)

// Adapter runs the stages of a self-training experiment against an Engine.
// It is safe for concurrent use.
type Adapter struct {
	engine   Engine
	workers  int
	training TrainingConfig
	logger   *slog.Logger
}

// New creates an Adapter driving engine.
func New(engine Engine, opts ...Option) *Adapter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Adapter{
		engine:   engine,
		workers:  cfg.workers,
		training: cfg.training,
		logger:   cfg.logger,
	}
}

// TrainingConfig returns the configuration Run uses for both training stages.
func (a *Adapter) TrainingConfig() TrainingConfig {
	return a.training
}

// TrainSeed trains the seed model.
func (a *Adapter) TrainSeed(ctx context.Context, seed *tree.Treebank, cfg TrainingConfig) (Model, error) {
	return a.train(ctx, "seed", seed, cfg)
}

// TrainFinal trains the final model on the merged treebank.
func (a *Adapter) TrainFinal(ctx context.Context, merged *tree.Treebank, cfg TrainingConfig) (Model, error) {
	return a.train(ctx, "final", merged, cfg)
}

// TrainBaseline trains a model directly, with no self-training.
func (a *Adapter) TrainBaseline(ctx context.Context, bank *tree.Treebank, cfg TrainingConfig) (Model, error) {
	return a.train(ctx, "baseline", bank, cfg)
}

func (a *Adapter) train(ctx context.Context, stage string, bank *tree.Treebank, cfg TrainingConfig) (Model, error) {
	if bank.Len() == 0 {
		return nil, &TrainingError{Stage: stage, Err: ErrEmptyTreebank}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &TrainingError{Stage: stage, Err: err}
	}

	a.logger.Info("training", "stage", stage, "size", bank.Len())
	model, err := a.engine.Train(ctx, bank, cfg)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, &TrainingError{Stage: stage, Err: err}
	}
	if model == nil {
		return nil, &TrainingError{Stage: stage, Err: errors.New("engine returned no model")}
	}
	return model, nil
}

// Labeling is the result of parsing an unlabeled pool.
type Labeling struct {
	// Trees holds one parse per labeled sentence, in input order.
	Trees *tree.Treebank

	// Skipped lists the input indices of sentences the model could not parse.
	Skipped []int
}

// Total returns the number of sentences offered for labeling.
func (l *Labeling) Total() int {
	return l.Trees.Len() + len(l.Skipped)
}

// Unlabeled returns the word sequences of the trees in pool, keyed by their
// position. Only the surface words are exposed; tags, structure and empty
// elements stay behind. Trees holding nothing but empty elements are left
// out. The sequence can be ranged over more than once.
func Unlabeled(pool *tree.Treebank) iter.Seq2[int, tree.Sentence] {
	return func(yield func(int, tree.Sentence) bool) {
		for i, t := range pool.All() {
			var s tree.Sentence
			for _, w := range t.TaggedYield() {
				if w.Tag == tree.EmptyTag {
					continue
				}
				s = append(s, tree.Word{Text: w.Text})
			}
			if len(s) == 0 {
				continue
			}
			if !yield(i, s) {
				return
			}
		}
	}
}

// LabelPool parses every sentence with model. Sentences the model cannot
// parse are recorded in Labeling.Skipped and left out of Labeling.Trees; any
// other outcome keeps input order regardless of the worker count.
// Cancelling ctx aborts labeling with the context's error.
func (a *Adapter) LabelPool(ctx context.Context, model Model, sentences iter.Seq2[int, tree.Sentence]) (*Labeling, error) {
	type item struct {
		index    int
		sentence tree.Sentence
	}
	var items []item
	for i, s := range sentences {
		items = append(items, item{index: i, sentence: s})
	}

	parsed := make([]*tree.Tree, len(items))
	failed := make([]error, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for slot, it := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := model.Parse(gctx, it.sentence)
			switch {
			case err != nil && gctx.Err() != nil && errors.Is(err, gctx.Err()):
				return err
			case err != nil:
				failed[slot] = err
			case t == nil:
				failed[slot] = ErrParseFailure
			default:
				parsed[slot] = t
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Labeling{Trees: tree.NewTreebank()}
	for slot, it := range items {
		if err := failed[slot]; err != nil {
			a.logger.Debug("skipping unparseable sentence", "index", it.index, "length", len(it.sentence), "error", err)
			out.Skipped = append(out.Skipped, it.index)
			continue
		}
		out.Trees.Add(parsed[slot])
	}

	a.logger.Info("labeled pool",
		"size", len(items),
		"parsed", out.Trees.Len(),
		"skipped", len(out.Skipped),
		"workers", a.workers,
	)
	return out, nil
}

// Merge returns a new treebank holding the seed trees followed by the labeled
// trees. Neither input is modified and duplicates are kept.
func Merge(seed, labeled *tree.Treebank) *tree.Treebank {
	return tree.Concat(seed, labeled)
}

// Evaluate scores model against the unmodified test treebank.
func (a *Adapter) Evaluate(ctx context.Context, model Model, test *tree.Treebank) (Report, error) {
	if model == nil {
		return Report{}, fmt.Errorf("%w: no model to evaluate", ErrTraining)
	}

	a.logger.Info("beginning test", "size", test.Len())
	report, err := a.engine.Evaluate(ctx, model, test)
	if err != nil {
		return Report{}, fmt.Errorf("evaluating: %w", err)
	}
	if report.Sentences != test.Len() {
		return report, &IncompleteReportError{
			Expected: test.Len(),
			Actual:   report.Sentences,
		}
	}

	a.logger.Info("evaluated",
		"size", report.Sentences,
		"skipped", report.Skipped,
		"f1", report.F1,
	)
	return report, nil
}
