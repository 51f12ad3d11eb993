package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMetrics enables or disables the stored-games gauge.
func WithMetrics(enabled bool) Option {
	return func(s *MemoryStore) {
		s.metricsEnabled = enabled
	}
}

// WithMaxLimit caps the n accepted by TopSwings.
func WithMaxLimit(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}
