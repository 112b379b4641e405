package bench

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

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

func TestBrackets(t *testing.T) {
	tr := mustParse(t, "(ROOT (S (NP (DT the) (NN cat)) (VP (VBD sat) (PP (IN on) (NP (DT the) (NN mat))))))")

	want := []Bracket{
		{Label: "NP", Start: 0, End: 2},
		{Label: "S", Start: 0, End: 6},
		{Label: "VP", Start: 2, End: 6},
		{Label: "PP", Start: 3, End: 6},
		{Label: "NP", Start: 4, End: 6},
	}
	if diff := cmp.Diff(want, Brackets(tr)); diff != "" {
		t.Errorf("Brackets() mismatch (-want +got):\n%s", diff)
	}
}

func TestBrackets_PreTerminalOnly(t *testing.T) {
	if got := Brackets(mustParse(t, "(ROOT (UH hi))")); len(got) != 0 {
		t.Errorf("expected no brackets, got %v", got)
	}
}

func TestEvaluate(t *testing.T) {
	np := Bracket{Label: "NP", Start: 0, End: 2}
	vp := Bracket{Label: "VP", Start: 2, End: 4}
	s := Bracket{Label: "S", Start: 0, End: 4}

	tests := []struct {
		name      string
		predicted []Bracket
		truth     []Bracket
		wantTP    int
		wantFP    int
		wantFN    int
	}{
		{
			name:      "perfect match",
			predicted: []Bracket{s, np, vp},
			truth:     []Bracket{s, np, vp},
			wantTP:    3,
		},
		{
			name:      "wrong label",
			predicted: []Bracket{s, {Label: "ADJP", Start: 0, End: 2}, vp},
			truth:     []Bracket{s, np, vp},
			wantTP:    2,
			wantFP:    1,
			wantFN:    1,
		},
		{
			name:      "false negative",
			predicted: []Bracket{s},
			truth:     []Bracket{s, np},
			wantTP:    1,
			wantFN:    1,
		},
		{
			name:      "duplicates matched once each",
			predicted: []Bracket{np, np, np},
			truth:     []Bracket{np, np},
			wantTP:    2,
			wantFP:    1,
		},
		{
			name: "both empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.predicted, tt.truth)

			if got.TruePositives != tt.wantTP {
				t.Errorf("TruePositives = %d, want %d", got.TruePositives, tt.wantTP)
			}
			if got.FalsePositives != tt.wantFP {
				t.Errorf("FalsePositives = %d, want %d", got.FalsePositives, tt.wantFP)
			}
			if got.FalseNegatives != tt.wantFN {
				t.Errorf("FalseNegatives = %d, want %d", got.FalseNegatives, tt.wantFN)
			}
		})
	}
}

func TestEvaluate_Scores(t *testing.T) {
	m := newMetrics(3, 1, 2)
	if m.Precision != 0.75 {
		t.Errorf("Precision = %v, want 0.75", m.Precision)
	}
	if m.Recall != 0.6 {
		t.Errorf("Recall = %v, want 0.6", m.Recall)
	}
	if want := 2 * 0.75 * 0.6 / 1.35; math.Abs(m.F1-want) > 1e-12 {
		t.Errorf("F1 = %v, want %v", m.F1, want)
	}
}

func TestTotal(t *testing.T) {
	gold1 := mustParse(t, "(ROOT (S (NP (DT the) (NN cat)) (VP (VBD sat))))")
	pred1 := mustParse(t, "(ROOT (S (NP (DT the) (NN cat)) (VP (VBD sat))))")
	gold2 := mustParse(t, "(ROOT (S (NP (NNS dogs)) (VP (VBP bark))))")
	pred2 := mustParse(t, "(ROOT (S (NP (NN dogs) (NN bark))))")
	gold3 := mustParse(t, "(ROOT (FRAG (NP (NN oops))))")

	var total Total
	total.AddParse(pred1, gold1)
	total.AddParse(pred2, gold2)
	total.AddFailure(gold3)

	if total.Sentences != 3 || total.Parsed != 2 || total.Skipped() != 1 {
		t.Errorf("counts: sentences=%d parsed=%d skipped=%d", total.Sentences, total.Parsed, total.Skipped())
	}
	if total.Exact != 1 {
		t.Errorf("Exact = %d, want 1", total.Exact)
	}

	// gold: 3 + 3 + 2 brackets; predicted: 3 + 2; matched: 3 + 1 (S).
	m := total.Metrics()
	if m.TruePositives != 4 || m.FalsePositives != 1 || m.FalseNegatives != 4 {
		t.Errorf("metrics = %+v", m)
	}

	// tags: 3/3 + 0/2 + 0/1
	if got, want := total.TaggingAccuracy(), 3.0/6.0; got != want {
		t.Errorf("TaggingAccuracy() = %v, want %v", got, want)
	}
	if got, want := total.ExactMatch(), 1.0/3.0; got != want {
		t.Errorf("ExactMatch() = %v, want %v", got, want)
	}
}

func TestTotal_Empty(t *testing.T) {
	var total Total
	if total.ExactMatch() != 0 || total.TaggingAccuracy() != 0 || total.Metrics().F1 != 0 {
		t.Error("empty total should score zero")
	}
}
