package pcfg

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	adapt "github.com/jamesainslie/go-adapt"
	"github.com/jamesainslie/go-adapt/inference"
	"github.com/jamesainslie/go-adapt/tree"
)

type binaryCount struct {
	parent, left, right int
	count               int
}

type unaryCount struct {
	parent, child int
	count         int
}

// emission counts a tag producing a word or an unknown-word signature.
type emission struct {
	tag   int
	word  string
	count int
}

// Grammar is a treebank grammar: rule and emission counts over a symbol table
// plus the training configuration they were estimated with. A Grammar is
// immutable and safe for concurrent use.
type Grammar struct {
	config  adapt.TrainingConfig
	symbols []string
	root    int

	binary     []binaryCount
	unary      []unaryCount
	lexicon    []emission
	signatures []emission

	// Derived by compile.
	index    map[string]int
	chart    *inference.Grammar
	words    map[string][]inference.Score
	sigs     map[string]map[int]int
	tagTotal map[int]int
	unkTotal map[int]int
	openTags []int
}

// Train estimates a grammar from bank.
func Train(ctx context.Context, bank *tree.Treebank, cfg adapt.TrainingConfig) (*Grammar, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prepared := make([]*tree.Tree, 0, bank.Len())
	wordCount := make(map[string]int)
	for i, t := range bank.All() {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		n := normalize(t)
		if n == nil {
			continue
		}
		for _, w := range n.Yield() {
			wordCount[w]++
		}
		if cfg.ParentAnnotation {
			n = annotate(n)
		}
		prepared = append(prepared, binarize(n, cfg.HorizontalMarkov))
	}
	if len(prepared) == 0 {
		return nil, ErrNoTrees
	}

	c := newCounter(cfg.UnknownThreshold, wordCount)
	for _, t := range prepared {
		position := 0
		c.count(t, &position)
	}
	return c.grammar(cfg)
}

type counter struct {
	threshold int
	wordCount map[string]int

	symbols []string
	index   map[string]int
	binary  map[[3]int]int
	unary   map[[2]int]int
	lexicon map[emissionKey]int
	sigs    map[emissionKey]int
}

type emissionKey struct {
	tag  int
	word string
}

func newCounter(threshold int, wordCount map[string]int) *counter {
	c := &counter{
		threshold: threshold,
		wordCount: wordCount,
		index:     make(map[string]int),
		binary:    make(map[[3]int]int),
		unary:     make(map[[2]int]int),
		lexicon:   make(map[emissionKey]int),
		sigs:      make(map[emissionKey]int),
	}
	c.symbol(rootLabel)
	return c
}

func (c *counter) symbol(label string) int {
	if id, ok := c.index[label]; ok {
		return id
	}
	id := len(c.symbols)
	c.symbols = append(c.symbols, label)
	c.index[label] = id
	return id
}

func (c *counter) count(n *tree.Tree, position *int) int {
	id := c.symbol(n.Label())
	if n.IsPreTerminal() {
		word := n.Child(0).Label()
		c.lexicon[emissionKey{id, word}]++
		if c.wordCount[word] <= c.threshold {
			c.sigs[emissionKey{id, signature(word, *position)}]++
		}
		*position++
		return id
	}

	switch n.Len() {
	case 1:
		child := c.count(n.Child(0), position)
		c.unary[[2]int{id, child}]++
	case 2:
		left := c.count(n.Child(0), position)
		right := c.count(n.Child(1), position)
		c.binary[[3]int{id, left, right}]++
	}
	return id
}

func (c *counter) grammar(cfg adapt.TrainingConfig) (*Grammar, error) {
	g := &Grammar{
		config:  cfg,
		symbols: c.symbols,
		root:    c.index[rootLabel],
	}
	for k, n := range c.binary {
		g.binary = append(g.binary, binaryCount{parent: k[0], left: k[1], right: k[2], count: n})
	}
	for k, n := range c.unary {
		g.unary = append(g.unary, unaryCount{parent: k[0], child: k[1], count: n})
	}
	for k, n := range c.lexicon {
		g.lexicon = append(g.lexicon, emission{tag: k.tag, word: k.word, count: n})
	}
	for k, n := range c.sigs {
		g.signatures = append(g.signatures, emission{tag: k.tag, word: k.word, count: n})
	}
	sortCounts(g)

	if err := g.compile(); err != nil {
		return nil, err
	}
	return g, nil
}

func sortCounts(g *Grammar) {
	slices.SortFunc(g.binary, func(a, b binaryCount) int {
		return cmp.Or(cmp.Compare(a.parent, b.parent), cmp.Compare(a.left, b.left), cmp.Compare(a.right, b.right))
	})
	slices.SortFunc(g.unary, func(a, b unaryCount) int {
		return cmp.Or(cmp.Compare(a.parent, b.parent), cmp.Compare(a.child, b.child))
	})
	byWord := func(a, b emission) int {
		return cmp.Or(strings.Compare(a.word, b.word), cmp.Compare(a.tag, b.tag))
	}
	slices.SortFunc(g.lexicon, byWord)
	slices.SortFunc(g.signatures, byWord)
}

// compile derives the log-probability chart grammar and the lexical tables
// from the counts.
func (g *Grammar) compile() error {
	g.index = make(map[string]int, len(g.symbols))
	for i, s := range g.symbols {
		g.index[s] = i
	}

	parentTotal := make(map[int]int)
	for _, r := range g.binary {
		parentTotal[r.parent] += r.count
	}
	for _, r := range g.unary {
		parentTotal[r.parent] += r.count
	}

	binary := make([]inference.Binary, 0, len(g.binary))
	for _, r := range g.binary {
		binary = append(binary, inference.Binary{
			Parent: r.parent,
			Left:   r.left,
			Right:  r.right,
			Score:  math.Log(float64(r.count) / float64(parentTotal[r.parent])),
		})
	}
	unary := make([]inference.Unary, 0, len(g.unary))
	for _, r := range g.unary {
		unary = append(unary, inference.Unary{
			Parent: r.parent,
			Child:  r.child,
			Score:  math.Log(float64(r.count) / float64(parentTotal[r.parent])),
		})
	}
	chart, err := inference.NewGrammar(len(g.symbols), g.root, binary, unary)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	g.chart = chart

	g.tagTotal = make(map[int]int)
	for _, e := range g.lexicon {
		g.tagTotal[e.tag] += e.count
	}
	g.words = make(map[string][]inference.Score)
	for _, e := range g.lexicon {
		g.words[e.word] = append(g.words[e.word], inference.Score{
			Symbol: e.tag,
			Score:  math.Log(float64(e.count) / float64(g.tagTotal[e.tag])),
		})
	}

	g.sigs = make(map[string]map[int]int)
	g.unkTotal = make(map[int]int)
	for _, e := range g.signatures {
		if g.sigs[e.word] == nil {
			g.sigs[e.word] = make(map[int]int)
		}
		g.sigs[e.word][e.tag] += e.count
		g.unkTotal[e.tag] += e.count
	}

	g.openTags = g.openTags[:0]
	for tag := range g.unkTotal {
		g.openTags = append(g.openTags, tag)
	}
	if len(g.openTags) == 0 {
		for tag := range g.tagTotal {
			g.openTags = append(g.openTags, tag)
		}
	}
	slices.Sort(g.openTags)
	return nil
}

// tagScores returns the candidate tags for the word at position.
func (g *Grammar) tagScores(word string, position int) []inference.Score {
	if known, ok := g.words[word]; ok {
		return known
	}
	if position == 0 {
		if known, ok := g.words[strings.ToLower(word)]; ok {
			return known
		}
	}

	sig := signature(word, position)
	counts := g.sigs[sig]
	lambda := g.config.Smoothing
	classes := float64(len(g.sigs) + 1)

	var out []inference.Score
	for _, tag := range g.openTags {
		num := float64(counts[tag]) + lambda
		den := float64(g.unkTotal[tag]) + lambda*classes
		if num <= 0 || den <= 0 {
			continue
		}
		out = append(out, inference.Score{Symbol: tag, Score: math.Log(num / den)})
	}
	return out
}

// Config returns the configuration the grammar was trained with.
func (g *Grammar) Config() adapt.TrainingConfig { return g.config }

// Symbols returns the number of grammar symbols, including intermediate and
// annotated ones.
func (g *Grammar) Symbols() int { return len(g.symbols) }

// Rules returns the number of binary and unary rules.
func (g *Grammar) Rules() int { return len(g.binary) + len(g.unary) }

// Vocabulary returns the number of distinct known words.
func (g *Grammar) Vocabulary() int { return len(g.words) }
