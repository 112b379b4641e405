// Package bench scores parses against gold trees and compares experiments
// across seed sizes.
package bench

import (
	"cmp"
	"slices"

	"github.com/jamesainslie/go-adapt/tree"
)

// Bracket is a labeled constituent span over token positions [Start, End).
type Bracket struct {
	Label string
	Start int
	End   int
}

// Brackets returns the labeled spans of t, excluding pre-terminals and the
// root node, sorted by start, end and label.
func Brackets(t *tree.Tree) []Bracket {
	var out []Bracket
	var walk func(n *tree.Tree, start int, root bool) int
	walk = func(n *tree.Tree, start int, root bool) int {
		if n.IsLeaf() {
			return start + 1
		}
		end := start
		for i := range n.Len() {
			end = walk(n.Child(i), end, false)
		}
		if !root && !n.IsPreTerminal() && end > start {
			out = append(out, Bracket{Label: n.Label(), Start: start, End: end})
		}
		return end
	}
	walk(t, 0, true)

	slices.SortFunc(out, func(a, b Bracket) int {
		return cmp.Or(
			cmp.Compare(a.Start, b.Start),
			cmp.Compare(a.End, b.End),
			cmp.Compare(a.Label, b.Label),
		)
	})
	return out
}

// Metrics holds evaluation results.
type Metrics struct {
	TruePositives  int
	FalsePositives int
	FalseNegatives int
	Precision      float64
	Recall         float64
	F1             float64
}

// Evaluate compares predicted brackets against gold ones. Duplicate brackets
// match at most as many times as they occur on both sides.
func Evaluate(predicted, truth []Bracket) Metrics {
	remaining := make(map[Bracket]int, len(truth))
	for _, b := range truth {
		remaining[b]++
	}

	tp := 0
	for _, b := range predicted {
		if remaining[b] > 0 {
			remaining[b]--
			tp++
		}
	}

	return newMetrics(tp, len(predicted)-tp, len(truth)-tp)
}

func newMetrics(tp, fp, fn int) Metrics {
	m := Metrics{
		TruePositives:  tp,
		FalsePositives: fp,
		FalseNegatives: fn,
	}
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// Total accumulates per-sentence scores into corpus-level figures.
// The zero value is ready to use.
type Total struct {
	Sentences   int
	Parsed      int
	Exact       int
	Tokens      int
	TagsCorrect int

	tp, fp, fn int
}

// AddParse scores one parsed sentence against its gold tree.
func (t *Total) AddParse(predicted, gold *tree.Tree) Metrics {
	m := Evaluate(Brackets(predicted), Brackets(gold))
	t.Sentences++
	t.Parsed++
	t.tp += m.TruePositives
	t.fp += m.FalsePositives
	t.fn += m.FalseNegatives
	if m.FalsePositives == 0 && m.FalseNegatives == 0 {
		t.Exact++
	}

	want := gold.TaggedYield()
	got := predicted.TaggedYield()
	t.Tokens += len(want)
	for i := range min(len(want), len(got)) {
		if want[i].Tag == got[i].Tag {
			t.TagsCorrect++
		}
	}
	return m
}

// AddFailure counts a sentence with no parse: every gold bracket is missed
// and no tag is correct.
func (t *Total) AddFailure(gold *tree.Tree) {
	t.Sentences++
	t.fn += len(Brackets(gold))
	t.Tokens += len(gold.Yield())
}

// Skipped returns the number of sentences with no parse.
func (t *Total) Skipped() int {
	return t.Sentences - t.Parsed
}

// Metrics returns micro-averaged bracket scores.
func (t *Total) Metrics() Metrics {
	return newMetrics(t.tp, t.fp, t.fn)
}

// ExactMatch returns the fraction of sentences whose brackets all match.
func (t *Total) ExactMatch() float64 {
	if t.Sentences == 0 {
		return 0
	}
	return float64(t.Exact) / float64(t.Sentences)
}

// TaggingAccuracy returns the fraction of gold tokens tagged correctly.
func (t *Total) TaggingAccuracy() float64 {
	if t.Tokens == 0 {
		return 0
	}
	return float64(t.TagsCorrect) / float64(t.Tokens)
}
