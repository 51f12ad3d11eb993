package winprob

import (
	"github.com/okian/pbpwpa/pkg/logger"
)

// Option applies a configuration option to the Adjuster.
type Option func(*Adjuster)

// WithPregameStdDev sets the margin standard deviation of the default
// pregame model.
func WithPregameStdDev(sd float64) Option {
	return func(a *Adjuster) {
		if sd > 0 {
			a.stddev = sd
		}
	}
}

// WithPregameModel replaces the pregame model. f maps the home line to the
// home win probability in percent.
func WithPregameModel(f func(line float64) float64) Option {
	return func(a *Adjuster) {
		if f != nil {
			a.pregame = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Adjuster) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics enables or disables adjustment metrics.
func WithMetrics(enabled bool) Option {
	return func(a *Adjuster) {
		a.metricsEnabled = enabled
	}
}
