package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleTree() *Tree {
	return Node("ROOT",
		Node("S",
			Node("NP", PreTerminal("DT", "The"), PreTerminal("NN", "cat")),
			Node("VP", PreTerminal("VBD", "sat")),
			PreTerminal(".", "."),
		),
	)
}

func TestTree_Yield(t *testing.T) {
	got := sampleTree().Yield()
	want := []string{"The", "cat", "sat", "."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Yield() mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_TaggedYield(t *testing.T) {
	got := sampleTree().TaggedYield()
	want := Sentence{
		{Text: "The", Tag: "DT"},
		{Text: "cat", Tag: "NN"},
		{Text: "sat", Tag: "VBD"},
		{Text: ".", Tag: "."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TaggedYield() mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_TaggedYield_BareLeaf(t *testing.T) {
	tr := Node("X", Leaf("a"), PreTerminal("B", "b"))
	got := tr.TaggedYield()
	want := Sentence{{Text: "a"}, {Text: "b", Tag: "B"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TaggedYield() mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_String(t *testing.T) {
	want := "(ROOT (S (NP (DT The) (NN cat)) (VP (VBD sat)) (. .)))"
	if got := sampleTree().String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNode_CopiesChildren(t *testing.T) {
	kids := []*Tree{Leaf("a"), Leaf("b")}
	n := Node("X", kids...)
	kids[0] = Leaf("z")
	if n.Child(0).Label() != "a" {
		t.Errorf("child changed through caller slice: %s", n)
	}
}

func TestTree_Equal(t *testing.T) {
	if !sampleTree().Equal(sampleTree()) {
		t.Error("expected identical trees to be equal")
	}
	other := Node("ROOT", PreTerminal("NN", "cat"))
	if sampleTree().Equal(other) {
		t.Error("expected different trees to differ")
	}
	if Leaf("a").Equal(Node("a")) {
		t.Error("leaf must not equal an empty node with the same label")
	}
}

func TestTreebank_OrderAndLen(t *testing.T) {
	a, b := PreTerminal("A", "a"), PreTerminal("B", "b")
	bank := NewTreebank(a, b)
	bank.Add(a)

	if bank.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", bank.Len())
	}
	var labels []string
	for _, tr := range bank.All() {
		labels = append(labels, tr.Label())
	}
	if diff := cmp.Diff([]string{"A", "B", "A"}, labels); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestTreebank_AllIsRestartable(t *testing.T) {
	bank := NewTreebank(Leaf("a"), Leaf("b"))
	seq := bank.All()
	for range 2 {
		n := 0
		for range seq {
			n++
		}
		if n != 2 {
			t.Errorf("iteration yielded %d trees, want 2", n)
		}
	}
}

func TestConcat(t *testing.T) {
	x := NewTreebank(Leaf("1"), Leaf("2"))
	y := NewTreebank(Leaf("3"))
	got := Concat(x, nil, y)
	if got.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", got.Len())
	}
	x.Add(Leaf("4"))
	if got.Len() != 3 {
		t.Errorf("Concat result changed after source mutation: %d", got.Len())
	}
}

func TestTreebank_Slice(t *testing.T) {
	bank := NewTreebank(Leaf("1"), Leaf("2"), Leaf("3"))
	s := bank.Slice(1, 3)
	s.Add(Leaf("9"))
	if bank.Len() != 3 {
		t.Errorf("source bank grew to %d after appending to a slice", bank.Len())
	}
	if s.At(0).Label() != "2" {
		t.Errorf("At(0) = %q, want %q", s.At(0).Label(), "2")
	}
}

func TestNilTreebank(t *testing.T) {
	var b *Treebank
	if b.Len() != 0 {
		t.Errorf("nil Len() = %d", b.Len())
	}
	if len(b.Trees()) != 0 {
		t.Error("nil Trees() should be empty")
	}
}
