package pcfg

import (
	"log/slog"
	"runtime"
)

// Option configures an Engine.
type Option func(*config)

type config struct {
	sessions int
	logger   *slog.Logger
}

func defaultConfig() config {
	return config{
		sessions: runtime.NumCPU(),
		logger:   slog.Default(),
	}
}

// WithSessions sets the chart session pool size of each model, which is also
// the number of sentences Evaluate parses at once (default: runtime.NumCPU()).
func WithSessions(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.sessions = n
		}
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
