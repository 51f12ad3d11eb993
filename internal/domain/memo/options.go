package memo

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithSizeHint preallocates room for the expected number of distinct
// descriptions in a batch.
func WithSizeHint(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.sizeHint = n
		}
	}
}

// WithMetrics enables or disables prometheus recording.
func WithMetrics(enabled bool) Option {
	return func(c *Cache) {
		c.metricsEnabled = enabled
	}
}
