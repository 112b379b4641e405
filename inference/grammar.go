package inference

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoParse is returned when the chart holds no derivation of the root
	// symbol over the whole input.
	ErrNoParse = errors.New("inference: no parse")

	// ErrPoolClosed is returned by Acquire after Close.
	ErrPoolClosed = errors.New("inference: pool closed")
)

// Binary is a rule Parent -> Left Right with a log-probability score.
type Binary struct {
	Parent, Left, Right int
	Score               float64
}

// Unary is a rule Parent -> Child with a log-probability score.
type Unary struct {
	Parent, Child int
	Score         float64
}

// Score is a candidate symbol for a single input position.
type Score struct {
	Symbol int
	Score  float64
}

// Grammar is a binarized grammar over dense symbol ids in [0, Symbols).
// It is immutable once built and shared by every session of a pool.
type Grammar struct {
	symbols int
	root    int
	unary   []Unary
	byLeft  [][]Binary
}

// NewGrammar validates the rules and indexes binary rules by left child.
func NewGrammar(symbols, root int, binary []Binary, unary []Unary) (*Grammar, error) {
	if symbols <= 0 {
		return nil, fmt.Errorf("grammar has %d symbols", symbols)
	}
	if root < 0 || root >= symbols {
		return nil, fmt.Errorf("root symbol %d out of range", root)
	}
	valid := func(ids ...int) bool {
		for _, id := range ids {
			if id < 0 || id >= symbols {
				return false
			}
		}
		return true
	}

	g := &Grammar{
		symbols: symbols,
		root:    root,
		byLeft:  make([][]Binary, symbols),
	}
	for _, r := range binary {
		if !valid(r.Parent, r.Left, r.Right) || math.IsNaN(r.Score) {
			return nil, fmt.Errorf("invalid binary rule %+v", r)
		}
		g.byLeft[r.Left] = append(g.byLeft[r.Left], r)
	}
	for _, r := range unary {
		if !valid(r.Parent, r.Child) || math.IsNaN(r.Score) {
			return nil, fmt.Errorf("invalid unary rule %+v", r)
		}
		if r.Parent == r.Child {
			continue
		}
		g.unary = append(g.unary, r)
	}
	return g, nil
}

// Symbols returns the number of symbols.
func (g *Grammar) Symbols() int { return g.symbols }

// Root returns the goal symbol.
func (g *Grammar) Root() int { return g.root }

// Node is a derivation. Lexical nodes cover one position and have no
// children; unary nodes have one child over the same span; binary nodes have
// two.
type Node struct {
	Symbol     int
	Start, End int
	Score      float64
	Children   []*Node
}
