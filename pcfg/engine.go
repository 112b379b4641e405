// Package pcfg is a treebank PCFG parser: relative-frequency estimates over
// parent-annotated, Markov-binarized trees, decoded with Viterbi CYK.
package pcfg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	adapt "github.com/jamesainslie/go-adapt"
	"github.com/jamesainslie/go-adapt/internal/bench"
	"github.com/jamesainslie/go-adapt/tree"
)

// Engine trains and evaluates PCFG models. It is safe for concurrent use.
type Engine struct {
	sessions int
	logger   *slog.Logger
}

var _ adapt.Engine = (*Engine)(nil)

// New creates an Engine.
func New(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{sessions: cfg.sessions, logger: cfg.logger}
}

// Train estimates a grammar from bank and returns a *Model.
func (e *Engine) Train(ctx context.Context, bank *tree.Treebank, cfg adapt.TrainingConfig) (adapt.Model, error) {
	g, err := Train(ctx, bank, cfg)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("trained grammar",
		"size", bank.Len(),
		"symbols", g.Symbols(),
		"rules", g.Rules(),
		"vocabulary", g.Vocabulary(),
	)
	return e.NewModel(g)
}

// NewModel wraps a trained or loaded grammar in a Model.
func (e *Engine) NewModel(g *Grammar) (*Model, error) {
	return newModel(g, e.sessions)
}

// Evaluate parses the words of every gold tree and scores the parses with
// labeled bracket precision and recall. Sentences without a parse count as
// skipped and miss all of their gold brackets.
func (e *Engine) Evaluate(ctx context.Context, model adapt.Model, gold *tree.Treebank) (adapt.Report, error) {
	golds := make([]*tree.Tree, gold.Len())
	parses := make([]*tree.Tree, gold.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.sessions)
	for i, t := range gold.All() {
		n := normalize(t)
		if n == nil {
			n = tree.Node(rootLabel)
		}
		golds[i] = n
		g.Go(func() error {
			p, err := model.Parse(gctx, sentence(n))
			switch {
			case err != nil && gctx.Err() != nil && errors.Is(err, gctx.Err()):
				return err
			case err != nil:
				e.logger.Debug("no parse", "index", i, "error", err)
			default:
				parses[i] = p
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return adapt.Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return adapt.Report{}, err
	}

	var total bench.Total
	for i, n := range golds {
		if parses[i] == nil {
			total.AddFailure(n)
			continue
		}
		total.AddParse(parses[i], n)
	}

	m := total.Metrics()
	return adapt.Report{
		Sentences:       total.Sentences,
		Parsed:          total.Parsed,
		Skipped:         total.Skipped(),
		Precision:       m.Precision,
		Recall:          m.Recall,
		F1:              m.F1,
		ExactMatch:      total.ExactMatch(),
		TaggingAccuracy: total.TaggingAccuracy(),
	}, nil
}

// sentence returns the words of t without their tags.
func sentence(t *tree.Tree) tree.Sentence {
	words := t.Yield()
	s := make(tree.Sentence, len(words))
	for i, w := range words {
		s[i] = tree.Word{Text: w}
	}
	return s
}

func (e *Engine) String() string {
	return fmt.Sprintf("pcfg(sessions=%d)", e.sessions)
}
