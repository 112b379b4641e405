package adapt

import (
	"context"
	"fmt"

	"github.com/jamesainslie/go-adapt/tree"
)

// Engine is the statistical parser the self-training loop drives. The loop
// never looks inside an Engine; it only trains, parses and evaluates.
type Engine interface {
	// Train estimates a model from bank.
	Train(ctx context.Context, bank *tree.Treebank, cfg TrainingConfig) (Model, error)

	// Evaluate parses the yield of every gold tree and scores the result.
	Evaluate(ctx context.Context, model Model, gold *tree.Treebank) (Report, error)
}

// Model is a trained parser.
type Model interface {
	// Parse returns a tree for s, or an error wrapping ErrParseFailure when
	// the model has no analysis for it.
	Parse(ctx context.Context, s tree.Sentence) (*tree.Tree, error)
}

// TrainingConfig is the immutable training configuration handed to every
// Engine.Train call.
type TrainingConfig struct {
	// ParentAnnotation splits phrasal labels by the label of their parent.
	ParentAnnotation bool

	// HorizontalMarkov is the number of sibling labels kept when binarizing;
	// negative keeps all of them.
	HorizontalMarkov int

	// UnknownThreshold is the word count at or below which a word also trains
	// its unknown-word signature.
	UnknownThreshold int

	// MaxSentenceLength bounds the sentences the model parses; 0 means no bound.
	MaxSentenceLength int

	// Smoothing is the add-λ constant for unknown-word emissions.
	Smoothing float64
}

// DefaultTrainingConfig returns the configuration used when none is given.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		ParentAnnotation:  true,
		HorizontalMarkov:  2,
		UnknownThreshold:  1,
		MaxSentenceLength: 0,
		Smoothing:         0.1,
	}
}

// Validate rejects configurations no engine can train with.
func (c TrainingConfig) Validate() error {
	switch {
	case c.UnknownThreshold < 0:
		return fmt.Errorf("%w: negative unknown threshold %d", ErrTraining, c.UnknownThreshold)
	case c.MaxSentenceLength < 0:
		return fmt.Errorf("%w: negative max sentence length %d", ErrTraining, c.MaxSentenceLength)
	case c.Smoothing < 0:
		return fmt.Errorf("%w: negative smoothing %v", ErrTraining, c.Smoothing)
	}
	return nil
}

// Report is the outcome of scoring a model against a held-out treebank.
type Report struct {
	Sentences       int // gold trees offered to the engine
	Parsed          int
	Skipped         int
	Precision       float64
	Recall          float64
	F1              float64
	ExactMatch      float64
	TaggingAccuracy float64
}

func (r Report) String() string {
	return fmt.Sprintf("sentences=%d parsed=%d skipped=%d P=%.2f R=%.2f F1=%.2f exact=%.2f tag=%.2f",
		r.Sentences, r.Parsed, r.Skipped,
		100*r.Precision, 100*r.Recall, 100*r.F1, 100*r.ExactMatch, 100*r.TaggingAccuracy)
}
