package service

import (
	"time"

	"github.com/okian/goalwatch/internal/config"
	"github.com/okian/goalwatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithScannerConfig sets the scan loop configuration.
func WithScannerConfig(cfg config.ScannerConfig) Option {
	return func(s *Service) {
		s.cfg = cfg
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

// WithClock overrides the time source used for scan timing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithInitialDelay postpones the first scan cycle after Start.
func WithInitialDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.initialDelay = d
		}
	}
}
