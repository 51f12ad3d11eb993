package timeline

import (
	"github.com/okian/pbpwpa/pkg/logger"
)

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithClassifier sets the row classifier, typically one backed by the
// description cache.
func WithClassifier(c Classifier) Option {
	return func(b *Builder) {
		if c != nil {
			b.classifier = c
		}
	}
}

// WithParallelism bounds how many rows are classified concurrently.
// Values below 2 classify sequentially.
func WithParallelism(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.parallelism = n
		}
	}
}

// WithLogger sets the logger used for unparsed rows.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetrics enables or disables classification metrics.
func WithMetrics(enabled bool) Option {
	return func(b *Builder) {
		b.metricsEnabled = enabled
	}
}

// WithValidation checks every built event against its payload kind.
func WithValidation(enabled bool) Option {
	return func(b *Builder) {
		b.validate = enabled
	}
}
