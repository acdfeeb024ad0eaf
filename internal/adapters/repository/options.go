package repository

import "time"

// Option applies a configuration option to the AlertStore.
type Option func(*AlertStore)

// WithMemoryWindow sets how long an alert blocks re-alerting its fixture.
func WithMemoryWindow(window time.Duration) Option {
	return func(s *AlertStore) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithCleanupInterval sets how often expired alerts are pruned in the background.
func WithCleanupInterval(interval time.Duration) Option {
	return func(s *AlertStore) {
		if interval > 0 {
			s.cleanupInterval = interval
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *AlertStore) {
		if now != nil {
			s.now = now
		}
	}
}
