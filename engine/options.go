package engine

import "log/slog"

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	DefaultMeasure string // measure key if QuerySpec.Measure is empty
	Palette        []string
	Logger         *slog.Logger
}

// WithDefaultMeasure sets the measure to aggregate when QuerySpec.Measure is empty.
func WithDefaultMeasure(measure string) Option {
	return func(c *config) {
		c.DefaultMeasure = measure
	}
}

// WithPalette overrides the series/slice color palette.
func WithPalette(colors []string) Option {
	return func(c *config) {
		if len(colors) > 0 {
			c.Palette = colors
		}
	}
}

// WithLogger routes pipeline debug logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Palette: defaultColors,
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
