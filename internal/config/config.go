// Package config defines process configuration and how it is loaded.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"
)

// Output formats for enriched tables.
const (
	OutputJSON = "json"
	OutputCSV  = "csv"
)

// DefaultPregameStdDev is the standard deviation of the final margin
// around the betting line.
const DefaultPregameStdDev = 13.86

// MaxTopSwings is the largest swing report the store will serve.
const MaxTopSwings = 1000

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// WorkerCount sets the number of game workers used by batch runs.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory game queue.
	QueueSize int `koanf:"queue_size"`

	// ClassifyParallelism bounds concurrent row classification within a game.
	ClassifyParallelism int `koanf:"classify_parallelism"`

	// CacheEnabled puts the description cache in front of the classifier.
	CacheEnabled bool `koanf:"cache_enabled"`

	// PregameStdDev is the margin standard deviation of the pregame model.
	PregameStdDev float64 `koanf:"pregame_stddev"`

	// MetricsFile, when set, receives a prometheus textfile at exit.
	MetricsFile string `koanf:"metrics_file"`

	// TopSwings is how many plays batch runs report by |WPA|.
	TopSwings int `koanf:"top_swings"`

	// OutputFormat is json or csv.
	OutputFormat string `koanf:"output_format"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		WorkerCount:         runtime.NumCPU(),
		QueueSize:           1024,
		ClassifyParallelism: 1,
		CacheEnabled:        true,
		PregameStdDev:       DefaultPregameStdDev,
		TopSwings:           10,
		OutputFormat:        OutputJSON,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.ClassifyParallelism <= 0:
		return fmt.Errorf("%w: classify_parallelism must be positive, got %d", ErrInvalidConfig, c.ClassifyParallelism)
	case !(c.PregameStdDev > 0):
		return fmt.Errorf("%w: pregame_stddev must be positive, got %v", ErrInvalidConfig, c.PregameStdDev)
	case c.TopSwings < 1 || c.TopSwings > MaxTopSwings:
		return fmt.Errorf("%w: top_swings must be in [1, %d], got %d", ErrInvalidConfig, MaxTopSwings, c.TopSwings)
	}
	switch c.OutputFormat {
	case OutputJSON, OutputCSV:
	default:
		return fmt.Errorf("%w: unknown output_format %q", ErrInvalidConfig, c.OutputFormat)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
