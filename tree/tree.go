// Package tree provides the in-memory parse tree and treebank model along with
// the canonical bracketed notation used to read and write them.
//
// Trees are immutable once built. A *Tree can therefore sit in several
// treebanks at once without any risk of one collection observing changes made
// through another.
package tree

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EmptyTag is the pre-terminal label of empty elements such as traces and
// null complementizers. Their leaves are annotation, not text.
const EmptyTag = "-NONE-"

// Tree is a rooted, ordered, labeled tree over tokens. Leaves carry words;
// pre-terminals carry the part-of-speech tag of their single leaf.
type Tree struct {
	label    string
	children []*Tree
	leaf     bool
}

// Word is one token of a sentence with its optional part-of-speech tag.
type Word struct {
	Text string
	Tag  string
}

// Sentence is a word sequence stripped of syntactic structure.
type Sentence []Word

// Texts returns the surface forms of s.
func (s Sentence) Texts() []string {
	out := make([]string, len(s))
	for i, w := range s {
		out[i] = w.Text
	}
	return out
}

// String joins the words of s with single spaces.
func (s Sentence) String() string {
	return strings.Join(s.Texts(), " ")
}

// Leaf returns a terminal node for word.
func Leaf(word string) *Tree {
	return &Tree{label: word, leaf: true}
}

// Node returns an interior node. The children slice is copied.
func Node(label string, children ...*Tree) *Tree {
	kids := make([]*Tree, len(children))
	copy(kids, children)
	return &Tree{label: label, children: kids}
}

// PreTerminal is shorthand for Node(tag, Leaf(word)).
func PreTerminal(tag, word string) *Tree {
	return &Tree{label: tag, children: []*Tree{Leaf(word)}}
}

// Label returns the node label, or the word for a leaf.
func (t *Tree) Label() string { return t.label }

// IsLeaf reports whether t is a terminal.
func (t *Tree) IsLeaf() bool { return t.leaf }

// IsPreTerminal reports whether t has exactly one child and that child is a leaf.
func (t *Tree) IsPreTerminal() bool {
	return !t.leaf && len(t.children) == 1 && t.children[0].leaf
}

// Len returns the number of children.
func (t *Tree) Len() int { return len(t.children) }

// Child returns the i-th child.
func (t *Tree) Child(i int) *Tree { return t.children[i] }

// Yield returns the words at the leaves in left-to-right order.
func (t *Tree) Yield() []string {
	var words []string
	t.walkLeaves(func(_ *Tree, leaf *Tree) {
		words = append(words, leaf.label)
	})
	return words
}

// TaggedYield returns the leaves with the labels of their pre-terminals as tags.
// Leaves hanging directly off a phrasal node get an empty tag.
func (t *Tree) TaggedYield() Sentence {
	var words Sentence
	t.walkLeaves(func(parent *Tree, leaf *Tree) {
		w := Word{Text: leaf.label}
		if parent != nil && parent.IsPreTerminal() {
			w.Tag = parent.label
		}
		words = append(words, w)
	})
	return words
}

func (t *Tree) walkLeaves(fn func(parent, leaf *Tree)) {
	var walk func(parent, n *Tree)
	walk = func(parent, n *Tree) {
		if n.leaf {
			fn(parent, n)
			return
		}
		for _, c := range n.children {
			walk(n, c)
		}
	}
	walk(nil, t)
}

// Equal reports whether t and u have identical structure and labels.
func (t *Tree) Equal(u *Tree) bool {
	if t == u {
		return true
	}
	if t == nil || u == nil {
		return false
	}
	if t.leaf != u.leaf || t.label != u.label || len(t.children) != len(u.children) {
		return false
	}
	for i := range t.children {
		if !t.children[i].Equal(u.children[i]) {
			return false
		}
	}
	return true
}

// String returns the canonical single-line bracketed form of t.
func (t *Tree) String() string {
	var b strings.Builder
	t.writeTo(&b)
	return b.String()
}

// check reports the first label of t that cannot survive a write and reload.
func (t *Tree) check() error {
	if t.leaf {
		return fmt.Errorf("%w: bare leaf %q at the root", ErrUnwritable, t.label)
	}
	var walk func(n *Tree) error
	walk = func(n *Tree) error {
		switch {
		case n.leaf && n.label == "":
			return fmt.Errorf("%w: empty word", ErrUnwritable)
		case strings.IndexFunc(n.label, isDelim) >= 0:
			return fmt.Errorf("%w: label %q contains a space or parenthesis", ErrUnwritable, n.label)
		case !utf8.ValidString(n.label):
			return fmt.Errorf("%w: label %q is not valid UTF-8", ErrUnwritable, n.label)
		}
		for _, c := range n.children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(t)
}

func (t *Tree) writeTo(b *strings.Builder) {
	if t.leaf {
		b.WriteString(t.label)
		return
	}
	b.WriteByte('(')
	b.WriteString(t.label)
	for _, c := range t.children {
		b.WriteByte(' ')
		c.writeTo(b)
	}
	b.WriteByte(')')
}
