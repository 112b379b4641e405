package adapt

import (
	"log/slog"
)

// Option configures an Adapter.
type Option func(*config)

type config struct {
	workers  int
	training TrainingConfig
	logger   *slog.Logger
}

func defaultConfig() config {
	return config{
		workers:  1,
		training: DefaultTrainingConfig(),
		logger:   slog.Default(),
	}
}

// WithWorkers sets how many sentences LabelPool parses at once (default: 1).
// Output order never depends on this value.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithTrainingConfig sets the configuration Run uses for both training stages
// (default: DefaultTrainingConfig()).
func WithTrainingConfig(tc TrainingConfig) Option {
	return func(c *config) {
		c.training = tc
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
