package dedupe

// Option configures the in-memory cache.
type Option func(*inMemoryCache)

// WithMaxSize bounds the number of fixtures remembered. Values <= 0 disable
// eviction.
func WithMaxSize(maxSize int) Option {
	return func(c *inMemoryCache) {
		c.maxSize = maxSize
	}
}
