package adapt

import (
	"context"
	"fmt"
	"sync"

	"github.com/jamesainslie/go-adapt/tree"
)

// State is a stage of a self-training Run.
type State int

const (
	Idle State = iota
	SeedTrained
	PoolLabeled
	Merged
	FinalTrained
	Done
	Failed
)

var stateNames = [...]string{
	Idle:         "idle",
	SeedTrained:  "seed-trained",
	PoolLabeled:  "pool-labeled",
	Merged:       "merged",
	FinalTrained: "final-trained",
	Done:         "done",
	Failed:       "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// next is the only successor of each non-terminal state. Failed is reachable
// from any of them.
var next = map[State]State{
	Idle:         SeedTrained,
	SeedTrained:  PoolLabeled,
	PoolLabeled:  Merged,
	Merged:       FinalTrained,
	FinalTrained: Done,
}

// Run is a single self-training experiment. Create one with Adapter.NewRun.
// Accessors are safe to call while Execute is in progress.
type Run struct {
	adapter *Adapter

	mu         sync.Mutex
	state      State
	err        error
	seedModel  Model
	finalModel Model
	labeling   *Labeling
	merged     *tree.Treebank
}

// NewRun returns an idle Run.
func (a *Adapter) NewRun() *Run {
	return &Run{adapter: a}
}

// Execute trains on seed, labels the sentences of pool, merges and retrains.
// A Run executes once; calling Execute again returns ErrInvalidTransition.
func (r *Run) Execute(ctx context.Context, seed, pool *tree.Treebank) error {
	if s := r.State(); s != Idle {
		return fmt.Errorf("%w: execute from %s", ErrInvalidTransition, s)
	}
	a := r.adapter
	cfg := a.training

	seedModel, err := a.TrainSeed(ctx, seed, cfg)
	if err != nil {
		return r.fail(err)
	}
	if err := r.advance(SeedTrained, func() { r.seedModel = seedModel }); err != nil {
		return err
	}

	labeling, err := a.LabelPool(ctx, seedModel, Unlabeled(pool))
	if err != nil {
		return r.fail(err)
	}
	if err := r.advance(PoolLabeled, func() { r.labeling = labeling }); err != nil {
		return err
	}

	merged := Merge(seed, labeling.Trees)
	if err := r.advance(Merged, func() { r.merged = merged }); err != nil {
		return err
	}

	finalModel, err := a.TrainFinal(ctx, merged, cfg)
	if err != nil {
		return r.fail(err)
	}
	if err := r.advance(FinalTrained, func() { r.finalModel = finalModel }); err != nil {
		return err
	}

	return r.advance(Done, nil)
}

// advance moves to the given state and applies set under the lock.
func (r *Run) advance(to State, set func()) error {
	r.mu.Lock()
	from := r.state
	if next[from] != to || from == Done {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if set != nil {
		set()
	}
	r.state = to
	r.mu.Unlock()

	r.adapter.logger.Info("run transition", "from", from.String(), "state", to.String())
	return nil
}

func (r *Run) fail(err error) error {
	r.mu.Lock()
	from := r.state
	r.state = Failed
	r.err = err
	r.mu.Unlock()

	r.adapter.logger.Error("run failed", "from", from.String(), "error", err)
	return err
}

// State returns the current state.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err returns the error that moved the Run to Failed, or nil.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// SeedModel returns the model trained on the seed, once trained.
func (r *Run) SeedModel() Model {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seedModel
}

// FinalModel returns the model trained on the merged treebank, once trained.
func (r *Run) FinalModel() Model {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalModel
}

// Labeling returns the result of labeling the pool, once labeled.
func (r *Run) Labeling() *Labeling {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.labeling
}

// Merged returns the seed plus labeled treebank, once merged.
func (r *Run) Merged() *tree.Treebank {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.merged
}

// Evaluate scores the final model of a completed Run against test.
func (r *Run) Evaluate(ctx context.Context, test *tree.Treebank) (Report, error) {
	if s := r.State(); s != Done {
		return Report{}, fmt.Errorf("%w: evaluate from %s", ErrInvalidTransition, s)
	}
	return r.adapter.Evaluate(ctx, r.FinalModel(), test)
}
