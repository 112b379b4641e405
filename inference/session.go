// Package inference runs Viterbi CYK over binarized grammars using pooled,
// reusable chart sessions.
package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
)

var errSessionClosed = errors.New("session is closed")

const (
	fromNone int8 = iota
	fromLexical
	fromBinary
	fromUnary
)

// back records how a chart entry was built.
type back struct {
	kind  int8
	split int32 // binary: split point
	left  int32 // binary: left symbol; unary: child symbol
	right int32 // binary: right symbol
}

// Session owns the chart buffers for one grammar. The buffers grow to the
// longest input seen and are reused across calls.
type Session struct {
	grammar *Grammar
	mu      sync.Mutex
	closed  bool

	n     int
	base  []float64 // lexical and binary layer
	final []float64 // after unary closure
	bBack []back
	fBack []back
}

// NewSession creates a session for g.
func NewSession(g *Grammar) (*Session, error) {
	if g == nil {
		return nil, errors.New("nil grammar")
	}
	return &Session{grammar: g}, nil
}

// Infer returns the best derivation of the root symbol over the whole input.
// lexical[i] lists the candidate symbols for position i.
func (s *Session) Infer(ctx context.Context, lexical [][]Score) (*Node, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errSessionClosed
	}

	n := len(lexical)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrNoParse)
	}
	s.reset(n)
	g := s.grammar

	for i, cands := range lexical {
		cell := s.cell(i, i+1)
		for _, c := range cands {
			if c.Symbol < 0 || c.Symbol >= g.symbols {
				return nil, fmt.Errorf("position %d: symbol %d out of range", i, c.Symbol)
			}
			if k := cell + c.Symbol; c.Score > s.base[k] {
				s.base[k] = c.Score
				s.bBack[k] = back{kind: fromLexical}
			}
		}
		s.closeUnary(cell)
	}

	for span := 2; span <= n; span++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for start := 0; start+span <= n; start++ {
			end := start + span
			cell := s.cell(start, end)
			for split := start + 1; split < end; split++ {
				lcell := s.cell(start, split)
				rcell := s.cell(split, end)
				for left, rules := range g.byLeft {
					ls := s.final[lcell+left]
					if math.IsInf(ls, -1) {
						continue
					}
					for _, r := range rules {
						rs := s.final[rcell+r.Right]
						if math.IsInf(rs, -1) {
							continue
						}
						if score := ls + rs + r.Score; score > s.base[cell+r.Parent] {
							s.base[cell+r.Parent] = score
							s.bBack[cell+r.Parent] = back{
								kind:  fromBinary,
								split: int32(split),
								left:  int32(r.Left),
								right: int32(r.Right),
							}
						}
					}
				}
			}
			s.closeUnary(cell)
		}
	}

	top := s.cell(0, n) + g.root
	if math.IsInf(s.final[top], -1) {
		return nil, ErrNoParse
	}
	return s.build(0, n, g.root), nil
}

// closeUnary copies the base layer of a cell into the final layer and relaxes
// unary rules until no score improves.
func (s *Session) closeUnary(cell int) {
	g := s.grammar
	copy(s.final[cell:cell+g.symbols], s.base[cell:cell+g.symbols])
	for k := cell; k < cell+g.symbols; k++ {
		s.fBack[k] = back{}
	}
	for range g.symbols {
		changed := false
		for _, r := range g.unary {
			cs := s.final[cell+r.Child]
			if math.IsInf(cs, -1) {
				continue
			}
			if score := cs + r.Score; score > s.final[cell+r.Parent] {
				s.final[cell+r.Parent] = score
				s.fBack[cell+r.Parent] = back{kind: fromUnary, left: int32(r.Child)}
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

// build reconstructs the derivation of sym over [start, end) from the final
// layer.
func (s *Session) build(start, end, sym int) *Node {
	k := s.cell(start, end) + sym
	if b := s.fBack[k]; b.kind == fromUnary {
		return &Node{
			Symbol:   sym,
			Start:    start,
			End:      end,
			Score:    s.final[k],
			Children: []*Node{s.build(start, end, int(b.left))},
		}
	}
	node := &Node{Symbol: sym, Start: start, End: end, Score: s.base[k]}
	if b := s.bBack[k]; b.kind == fromBinary {
		split := int(b.split)
		node.Children = []*Node{
			s.build(start, split, int(b.left)),
			s.build(split, end, int(b.right)),
		}
	}
	return node
}

// cell returns the offset of span [start, end) in the chart layers. Only
// spans with start < end have cells: row start holds the n-start spans that
// begin there, so the chart has n*(n+1)/2 cells.
func (s *Session) cell(start, end int) int {
	row := start*s.n - start*(start-1)/2
	return (row + end - start - 1) * s.grammar.symbols
}

func chartCells(n int) int { return n * (n + 1) / 2 }

func (s *Session) reset(n int) {
	size := chartCells(n) * s.grammar.symbols
	if cap(s.base) < size {
		s.base = make([]float64, size)
		s.final = make([]float64, size)
		s.bBack = make([]back, size)
		s.fBack = make([]back, size)
	}
	s.n = n
	s.base = s.base[:size]
	s.final = s.final[:size]
	s.bBack = s.bBack[:size]
	s.fBack = s.fBack[:size]
	inf := math.Inf(-1)
	for i := range s.base {
		s.base[i] = inf
		s.final[i] = inf
		s.bBack[i] = back{}
	}
}

// Close releases the chart buffers.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.base, s.final, s.bBack, s.fBack = nil, nil, nil, nil
	return nil
}
