package pcfg

import (
	"testing"

	"github.com/jamesainslie/go-adapt/tree"
)

func mustParse(t *testing.T, s string) *tree.Tree {
	t.Helper()
	tr, err := tree.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", s, err)
	}
	return tr
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "penn empty root",
			in:   "( (S (NP-SBJ (-NONE- *T*)) (NP-SBJ-1 (DT The) (NN cat)) (VP (VBD sat)) (. .)))",
			want: "(ROOT (S (NP (DT The) (NN cat)) (VP (VBD sat)) (. .)))",
		},
		{
			name: "no root",
			in:   "(S (NN x))",
			want: "(ROOT (S (NN x)))",
		},
		{
			name: "top root",
			in:   "(TOP (FRAG=2 (UH oh)))",
			want: "(ROOT (FRAG (UH oh)))",
		},
		{
			name: "self unary collapsed",
			in:   "(ROOT (NP (NP (NN a))))",
			want: "(ROOT (NP (NN a)))",
		},
		{
			name: "stray word",
			in:   "(ROOT (S hello (NN x)))",
			want: "(ROOT (S (XX hello) (NN x)))",
		},
		{
			name: "bracket tags kept",
			in:   "(ROOT (PRN (-LRB- -LRB-) (NN x) (-RRB- -RRB-)))",
			want: "(ROOT (PRN (-LRB- -LRB-) (NN x) (-RRB- -RRB-)))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize(mustParse(t, tt.in))
			if got == nil {
				t.Fatal("normalize() returned nil")
			}
			if got.String() != tt.want {
				t.Errorf("normalize() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNormalize_OnlyEmptyElements(t *testing.T) {
	if got := normalize(mustParse(t, "( (S (-NONE- *)))")); got != nil {
		t.Errorf("expected nil, got %s", got)
	}
}

func TestBaseLabel(t *testing.T) {
	tests := map[string]string{
		"NP-SBJ-1": "NP",
		"S=2":      "S",
		"PP-LOC":   "PP",
		"PRP$":     "PRP$",
		"-LRB-":    "-LRB-",
		"-NONE-":   "-NONE-",
		"":         "",
	}
	for in, want := range tests {
		if got := baseLabel(in); got != want {
			t.Errorf("baseLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAnnotate(t *testing.T) {
	in := mustParse(t, "(ROOT (S (NP (DT a) (NN b)) (VP (VBD c))))")
	want := "(ROOT (S^ROOT (NP^S (DT a) (NN b)) (VP^S (VBD c))))"
	if got := annotate(in).String(); got != want {
		t.Errorf("annotate() = %s, want %s", got, want)
	}
}

func TestBinarize(t *testing.T) {
	in := mustParse(t, "(ROOT (NP (DT a) (JJ b) (JJ c) (NN d)))")

	tests := []struct {
		h    int
		want string
	}{
		{-1, "(ROOT (NP (DT a) (@NP|DT (JJ b) (@NP|DT,JJ (JJ c) (NN d)))))"},
		{2, "(ROOT (NP (DT a) (@NP|DT (JJ b) (@NP|DT,JJ (JJ c) (NN d)))))"},
		{1, "(ROOT (NP (DT a) (@NP|DT (JJ b) (@NP|JJ (JJ c) (NN d)))))"},
		{0, "(ROOT (NP (DT a) (@NP| (JJ b) (@NP| (JJ c) (NN d)))))"},
	}
	for _, tt := range tests {
		if got := binarize(in, tt.h).String(); got != tt.want {
			t.Errorf("binarize(h=%d) = %s, want %s", tt.h, got, tt.want)
		}
	}
}

func TestRestore_UndoesTransforms(t *testing.T) {
	in := mustParse(t, "(ROOT (S (NP (DT the) (JJ big) (JJ red) (NN dog)) (VP (VBD saw) (NP (NNS cats)) (PP (IN in) (NP (NN town)))) (. .)))")

	for _, h := range []int{-1, 0, 1, 2} {
		got := restore(binarize(annotate(in), h))
		if !got.Equal(in) {
			t.Errorf("h=%d: restore() = %s, want %s", h, got, in)
		}
	}
}
