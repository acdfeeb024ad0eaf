package analyzer

import (
	"time"

	"github.com/okian/goalwatch/internal/domain/dedupe"
	"github.com/okian/goalwatch/pkg/logger"
)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCache replaces the default in-memory deduplication cache.
func WithCache(c dedupe.Cache) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.cache = c
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.log = l
		}
	}
}

// WithClock overrides the timestamp source for results.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// WithIDGenerator overrides how result ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(a *Analyzer) {
		if gen != nil {
			a.newID = gen
		}
	}
}
