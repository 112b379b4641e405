package pcfg

import (
	"strings"

	"github.com/jamesainslie/go-adapt/tree"
)

const (
	rootLabel = "ROOT"

	// strayTag is given to words that sit directly under a phrasal node.
	strayTag = "XX"
)

// normalize strips empty elements and function tags and puts the tree under
// a single ROOT node. It returns nil when nothing but empty elements remain.
func normalize(t *tree.Tree) *tree.Tree {
	if t == nil || t.IsLeaf() {
		return nil
	}

	var kids []*tree.Tree
	switch l := t.Label(); {
	case !t.IsPreTerminal() && (l == "" || l == rootLabel || l == "TOP"):
		for i := range t.Len() {
			if c := strip(t.Child(i)); c != nil {
				kids = append(kids, c)
			}
		}
	default:
		if c := strip(t); c != nil {
			kids = append(kids, c)
		}
	}
	if len(kids) == 0 {
		return nil
	}
	return tree.Node(rootLabel, kids...)
}

func strip(n *tree.Tree) *tree.Tree {
	switch {
	case n.IsLeaf():
		return tree.PreTerminal(strayTag, n.Label())
	case n.IsPreTerminal():
		if n.Label() == tree.EmptyTag {
			return nil
		}
		return n
	}

	label := baseLabel(n.Label())
	var kids []*tree.Tree
	for i := range n.Len() {
		if c := strip(n.Child(i)); c != nil {
			kids = append(kids, c)
		}
	}
	switch {
	case len(kids) == 0:
		return nil
	case len(kids) == 1 && !kids[0].IsPreTerminal() && kids[0].Label() == label:
		return kids[0]
	}
	return tree.Node(label, kids...)
}

// baseLabel drops function tags and coindexation: NP-SBJ-1 and NP=2 become NP.
// Labels that start with a dash, such as -LRB-, are kept whole.
func baseLabel(l string) string {
	if l == "" || l[0] == '-' {
		return l
	}
	if i := strings.IndexAny(l[1:], "-="); i >= 0 {
		return l[:i+1]
	}
	return l
}

// annotate splits every phrasal label below the root by its parent's label.
func annotate(t *tree.Tree) *tree.Tree {
	kids := make([]*tree.Tree, t.Len())
	for i := range t.Len() {
		kids[i] = annotateUnder(t.Child(i), t.Label())
	}
	return tree.Node(t.Label(), kids...)
}

func annotateUnder(n *tree.Tree, parent string) *tree.Tree {
	if n.IsLeaf() || n.IsPreTerminal() {
		return n
	}
	kids := make([]*tree.Tree, n.Len())
	for i := range n.Len() {
		kids[i] = annotateUnder(n.Child(i), n.Label())
	}
	return tree.Node(n.Label()+"^"+parent, kids...)
}

// binarize right-factors nodes with more than two children. Intermediate
// nodes are labeled @X|<siblings>, keeping the last h sibling labels, or all
// of them when h is negative.
func binarize(n *tree.Tree, h int) *tree.Tree {
	if n.IsLeaf() || n.IsPreTerminal() {
		return n
	}
	kids := make([]*tree.Tree, n.Len())
	for i := range n.Len() {
		kids[i] = binarize(n.Child(i), h)
	}
	if len(kids) <= 2 {
		return tree.Node(n.Label(), kids...)
	}
	return tree.Node(n.Label(), kids[0], factor(n.Label(), kids[1:], []string{unannotate(kids[0].Label())}, h))
}

func factor(parent string, kids []*tree.Tree, seen []string, h int) *tree.Tree {
	window := seen
	if h >= 0 && len(window) > h {
		window = window[len(window)-h:]
	}
	label := "@" + parent + "|" + strings.Join(window, ",")
	if len(kids) == 2 {
		return tree.Node(label, kids...)
	}
	return tree.Node(label, kids[0], factor(parent, kids[1:], append(seen, unannotate(kids[0].Label())), h))
}

// restore undoes binarize and annotate.
func restore(n *tree.Tree) *tree.Tree {
	if n.IsLeaf() || n.IsPreTerminal() {
		return n
	}
	var kids []*tree.Tree
	for i := range n.Len() {
		c := n.Child(i)
		r := restore(c)
		if isIntermediate(c.Label()) {
			for j := range r.Len() {
				kids = append(kids, r.Child(j))
			}
			continue
		}
		kids = append(kids, r)
	}
	return tree.Node(unannotate(n.Label()), kids...)
}

func isIntermediate(l string) bool {
	return strings.HasPrefix(l, "@")
}

func unannotate(l string) string {
	if l == "" || l[0] == '-' {
		return l
	}
	if i := strings.IndexByte(l, '^'); i > 0 {
		return l[:i]
	}
	return l
}
