package tree

import "iter"

// Treebank is an ordered collection of trees. Insertion order is preserved
// and duplicates are kept.
type Treebank struct {
	trees []*Tree
}

// NewTreebank returns a treebank holding trees in the given order.
func NewTreebank(trees ...*Tree) *Treebank {
	b := &Treebank{trees: make([]*Tree, 0, len(trees))}
	b.trees = append(b.trees, trees...)
	return b
}

// Add appends trees to the end of b.
func (b *Treebank) Add(trees ...*Tree) {
	b.trees = append(b.trees, trees...)
}

// Len returns the number of trees added to b. A nil treebank is empty.
func (b *Treebank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.trees)
}

// At returns the i-th tree.
func (b *Treebank) At(i int) *Tree {
	return b.trees[i]
}

// All iterates over the trees of b in order. The sequence may be ranged over
// any number of times.
func (b *Treebank) All() iter.Seq2[int, *Tree] {
	return func(yield func(int, *Tree) bool) {
		for i := 0; i < b.Len(); i++ {
			if !yield(i, b.trees[i]) {
				return
			}
		}
	}
}

// Trees returns a copy of the tree slice.
func (b *Treebank) Trees() []*Tree {
	out := make([]*Tree, b.Len())
	if b != nil {
		copy(out, b.trees)
	}
	return out
}

// Slice returns a new treebank with trees [lo, hi) of b.
func (b *Treebank) Slice(lo, hi int) *Treebank {
	return NewTreebank(b.trees[lo:hi]...)
}

// Concat returns a new treebank with the trees of each bank in argument order.
func Concat(banks ...*Treebank) *Treebank {
	n := 0
	for _, b := range banks {
		n += b.Len()
	}
	out := &Treebank{trees: make([]*Tree, 0, n)}
	for _, b := range banks {
		if b != nil {
			out.trees = append(out.trees, b.trees...)
		}
	}
	return out
}

// Tokens returns the total number of leaves across all trees.
func (b *Treebank) Tokens() int {
	n := 0
	for _, t := range b.All() {
		n += len(t.Yield())
	}
	return n
}
