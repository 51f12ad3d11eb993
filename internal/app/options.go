package service

import (
	"github.com/okian/pbpwpa/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the game queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithClassifyParallelism bounds concurrent row classification within
// one game.
func WithClassifyParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.classifyParallelism = n
		}
	}
}

// WithCacheEnabled turns the shared description cache on or off.
func WithCacheEnabled(enabled bool) Option {
	return func(s *Service) {
		s.cacheEnabled = enabled
	}
}

// WithPregameStdDev sets the margin standard deviation of the pregame model.
func WithPregameStdDev(sd float64) Option {
	return func(s *Service) {
		if sd > 0 {
			s.pregameStdDev = sd
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
