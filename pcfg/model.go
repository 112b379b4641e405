package pcfg

import (
	"context"
	"errors"
	"fmt"

	adapt "github.com/jamesainslie/go-adapt"
	"github.com/jamesainslie/go-adapt/inference"
	"github.com/jamesainslie/go-adapt/tree"
)

// Model parses with a trained grammar through a pool of chart sessions.
// It is safe for concurrent use.
type Model struct {
	grammar *Grammar
	pool    *inference.Pool
}

func newModel(g *Grammar, sessions int) (*Model, error) {
	pool, err := inference.NewPool(g.chart, sessions)
	if err != nil {
		return nil, err
	}
	return &Model{grammar: g, pool: pool}, nil
}

// Parse returns the most probable tree for s under ROOT. Tags in s are
// ignored; the model predicts its own.
func (m *Model) Parse(ctx context.Context, s tree.Sentence) (*tree.Tree, error) {
	g := m.grammar
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: empty sentence", adapt.ErrParseFailure)
	}
	if limit := g.config.MaxSentenceLength; limit > 0 && len(s) > limit {
		return nil, fmt.Errorf("%w: length %d exceeds %d", adapt.ErrParseFailure, len(s), limit)
	}

	lexical := make([][]inference.Score, len(s))
	for i, w := range s {
		lexical[i] = g.tagScores(w.Text, i)
		if len(lexical[i]) == 0 {
			return nil, fmt.Errorf("%w: no tag for %q", adapt.ErrParseFailure, w.Text)
		}
	}

	node, err := m.pool.Infer(ctx, lexical)
	if err != nil {
		if errors.Is(err, inference.ErrNoParse) {
			return nil, fmt.Errorf("%w: %w", adapt.ErrParseFailure, err)
		}
		return nil, err
	}
	return restore(g.toTree(node, s)), nil
}

func (g *Grammar) toTree(n *inference.Node, s tree.Sentence) *tree.Tree {
	label := g.symbols[n.Symbol]
	if len(n.Children) == 0 {
		return tree.PreTerminal(label, s[n.Start].Text)
	}
	kids := make([]*tree.Tree, len(n.Children))
	for i, c := range n.Children {
		kids[i] = g.toTree(c, s)
	}
	return tree.Node(label, kids...)
}

// Grammar returns the grammar the model parses with.
func (m *Model) Grammar() *Grammar {
	return m.grammar
}

// Close releases the chart sessions.
func (m *Model) Close() error {
	return m.pool.Close()
}
