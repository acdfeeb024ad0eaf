package resilience

import "time"

// Config tunes the breaker.
type Config struct {
	Enabled          bool          `koanf:"enabled"`
	FailureThreshold int           `koanf:"failure_threshold" validate:"gte=0"`
	OpenTimeout      time.Duration `koanf:"open_timeout" validate:"gte=0"`
	HalfOpenProbes   int           `koanf:"half_open_probes" validate:"gte=0"`
}

// DefaultConfig returns an enabled breaker that opens after five failures.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenProbes:   1,
	}
}

// Normalize replaces non-positive values with defaults.
func (c Config) Normalize() Config {
	d := DefaultConfig()
	if c.FailureThreshold < 1 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = d.OpenTimeout
	}
	if c.HalfOpenProbes < 1 {
		c.HalfOpenProbes = d.HalfOpenProbes
	}
	return c
}
