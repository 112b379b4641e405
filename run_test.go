package adapt

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-adapt/tree"
)

func TestRun_Execute(t *testing.T) {
	engine := &fakeEngine{model: &fakeModel{fail: map[string]bool{"p2 x": true}}}
	a := New(engine, WithWorkers(3), WithLogger(quietLogger()))
	seed := goldBank("SEED", "s", 2)
	pool := goldBank("GOLD", "p", 5)

	run := a.NewRun()
	if run.State() != Idle {
		t.Fatalf("new run state = %s, want idle", run.State())
	}
	if err := run.Execute(context.Background(), seed, pool); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if run.State() != Done {
		t.Errorf("state = %s, want done", run.State())
	}
	require.NoError(t, run.Err())
	require.NotNil(t, run.SeedModel())
	require.NotNil(t, run.FinalModel())
	require.Equal(t, []int{2}, run.Labeling().Skipped)
	require.Equal(t, 6, run.Merged().Len())

	require.Len(t, engine.trained, 2)
	require.Same(t, seed, engine.trained[0])
	require.Same(t, run.Merged(), engine.trained[1])
}

func TestRun_PoolGoldNeverTrained(t *testing.T) {
	engine := &fakeEngine{}
	a := New(engine, WithLogger(quietLogger()))
	seed := goldBank("SEED", "s", 3)
	pool := goldBank("GOLD", "p", 4)

	run := a.NewRun()
	require.NoError(t, run.Execute(context.Background(), seed, pool))
	test := goldBank("TEST", "t", 2)
	_, err := run.Evaluate(context.Background(), test)
	require.NoError(t, err)

	poolTrees := pool.Trees()
	for _, bank := range append(slices.Clone(engine.trained), engine.evaluated...) {
		for i, tr := range bank.All() {
			if slices.Contains(poolTrees, tr) {
				t.Errorf("pool gold tree %d reached the engine", i)
			}
			for _, l := range labels(tr) {
				if l == "GOLD" {
					t.Errorf("gold annotation %q leaked into tree %d: %s", l, i, tr)
				}
			}
		}
	}
	for _, s := range engine.model.seen {
		for _, w := range s {
			if w.Tag != "" {
				t.Errorf("parser saw gold tag %q for %q", w.Tag, w.Text)
			}
		}
	}
}

func TestRun_SeedFailure(t *testing.T) {
	cause := errors.New("degenerate grammar")
	engine := &fakeEngine{trainErr: map[int]error{0: cause}}
	run := New(engine, WithLogger(quietLogger())).NewRun()

	err := run.Execute(context.Background(), goldBank("SEED", "s", 1), goldBank("GOLD", "p", 1))
	if !errors.Is(err, ErrTraining) || !errors.Is(err, cause) {
		t.Fatalf("expected ErrTraining wrapping cause, got: %v", err)
	}
	if run.State() != Failed {
		t.Errorf("state = %s, want failed", run.State())
	}
	if !errors.Is(run.Err(), cause) {
		t.Errorf("Err() = %v, want cause", run.Err())
	}
	if run.SeedModel() != nil || run.Labeling() != nil {
		t.Error("failed run should expose no seed model or labeling")
	}

	err = run.Execute(context.Background(), goldBank("SEED", "s", 1), goldBank("GOLD", "p", 1))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("re-executing failed run: expected ErrInvalidTransition, got: %v", err)
	}
}

func TestRun_FinalFailure(t *testing.T) {
	engine := &fakeEngine{trainErr: map[int]error{1: errors.New("out of memory")}}
	run := New(engine, WithLogger(quietLogger())).NewRun()

	err := run.Execute(context.Background(), goldBank("SEED", "s", 1), goldBank("GOLD", "p", 2))
	var te *TrainingError
	if !errors.As(err, &te) || te.Stage != "final" {
		t.Fatalf("expected final-stage *TrainingError, got: %v", err)
	}
	require.Equal(t, Failed, run.State())
	require.NotNil(t, run.SeedModel())
	require.NotNil(t, run.Merged())
	require.Nil(t, run.FinalModel())
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := New(&fakeEngine{}, WithLogger(quietLogger())).NewRun()
	err := run.Execute(ctx, goldBank("SEED", "s", 1), goldBank("GOLD", "p", 3))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
	require.Equal(t, Failed, run.State())
}

func TestRun_ExecuteTwice(t *testing.T) {
	run := New(&fakeEngine{}, WithLogger(quietLogger())).NewRun()
	require.NoError(t, run.Execute(context.Background(), goldBank("SEED", "s", 1), goldBank("GOLD", "p", 1)))

	err := run.Execute(context.Background(), goldBank("SEED", "s", 1), goldBank("GOLD", "p", 1))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got: %v", err)
	}
	if run.State() != Done {
		t.Errorf("completed run changed state to %s", run.State())
	}
}

func TestRun_EvaluateBeforeDone(t *testing.T) {
	run := New(&fakeEngine{}, WithLogger(quietLogger())).NewRun()
	_, err := run.Evaluate(context.Background(), tree.NewTreebank())
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got: %v", err)
	}
}

func TestRun_AdvanceRejectsSkips(t *testing.T) {
	run := New(&fakeEngine{}, WithLogger(quietLogger())).NewRun()
	if err := run.advance(Merged, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("idle -> merged: expected ErrInvalidTransition, got: %v", err)
	}
	if err := run.advance(SeedTrained, nil); err != nil {
		t.Errorf("idle -> seed-trained: %v", err)
	}
	if err := run.advance(SeedTrained, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("seed-trained -> seed-trained: expected ErrInvalidTransition, got: %v", err)
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		Idle:         "idle",
		SeedTrained:  "seed-trained",
		PoolLabeled:  "pool-labeled",
		Merged:       "merged",
		FinalTrained: "final-trained",
		Done:         "done",
		Failed:       "failed",
		State(42):    "State(42)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
