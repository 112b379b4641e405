package corpus

import "log/slog"

// Option configures Load and LoadGenres.
type Option func(*loadConfig)

type loadConfig struct {
	selector Selector
	logger   *slog.Logger
	progress func(done, total int, name string)
}

func defaultLoadConfig() loadConfig {
	return loadConfig{
		selector: All(),
		logger:   slog.Default(),
	}
}

func newLoadConfig(opts []Option) loadConfig {
	cfg := defaultLoadConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithSelector restricts directory loads to files accepted by s (default: All()).
func WithSelector(s Selector) Option {
	return func(c *loadConfig) {
		c.selector = s
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *loadConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithProgress registers a callback invoked after each file is read.
func WithProgress(fn func(done, total int, name string)) Option {
	return func(c *loadConfig) {
		c.progress = fn
	}
}
