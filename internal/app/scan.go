package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/okian/goalwatch/internal/adapters/mq/queue"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/logger"
	"github.com/okian/goalwatch/pkg/metrics"
)

// ScanReport summarises one scan cycle.
type ScanReport struct {
	Live     int  `json:"live"`
	InWindow int  `json:"in_window"`
	Extended bool `json:"extended"`
	Skipped  int  `json:"skipped"`
	Queued   int  `json:"queued"`
}

// run drives scan cycles until Stop or ctx cancellation, and the periodic
// maintenance of the alert history and provider cache.
func (s *Service) run(ctx context.Context) {
	defer close(s.doneCh)

	cleanup := time.NewTicker(s.cfg.CleanupInterval)
	defer cleanup.Stop()

	timer := time.NewTimer(s.initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-cleanup.C:
			s.maintain(ctx)
		case <-timer.C:
			if _, err := s.ScanOnce(ctx); err != nil && !errors.Is(err, ErrPaused) {
				s.logger.Error(ctx, "scan cycle failed", logger.Error(err))
			}
			timer.Reset(s.interval())
		}
	}
}

// ScanOnce runs a single scan cycle: fetch live fixtures, select the
// ones in the analysis window and queue them.
func (s *Service) ScanOnce(ctx context.Context) (ScanReport, error) {
	if s.jobs == nil {
		return ScanReport{}, ErrNotStarted
	}
	if s.paused.Load() {
		return ScanReport{}, ErrPaused
	}

	start := time.Now()
	defer func() {
		metrics.RecordScanCycle(float64(time.Since(start).Milliseconds()))
	}()
	s.cycles.Add(1)
	s.lastScan.Store(s.now().UnixNano())

	live, err := s.source.LiveFixtures(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "live_fixtures")
		return ScanReport{}, err
	}
	metrics.RecordFixturesScanned(len(live))

	selected, extended := s.selectFixtures(live)
	report := ScanReport{Live: len(live), InWindow: len(selected), Extended: extended}
	s.lastInWindow.Store(int64(len(selected)))
	metrics.UpdateFixturesInWindow(len(selected))

	for _, fx := range selected {
		if report.Queued >= s.cfg.MaxFixturesPerScan {
			break
		}
		if s.alerts.IsAlerted(ctx, fx.ID) {
			report.Skipped++
			continue
		}
		switch err := s.jobs.Enqueue(ctx, fx); {
		case err == nil:
			report.Queued++
		case errors.Is(err, queue.ErrPending):
			report.Skipped++
		default:
			s.logger.Warn(ctx, "fixture not queued",
				logger.Int64("fixture_id", fx.ID),
				logger.Error(err),
			)
		}
	}

	s.logger.Info(ctx, "scan cycle",
		logger.Int("live", report.Live),
		logger.Int("in_window", report.InWindow),
		logger.Bool("extended", report.Extended),
		logger.Int("queued", report.Queued),
		logger.Int("skipped", report.Skipped),
	)
	return report, nil
}

// selectFixtures keeps fixtures in the primary minute window, widening to
// the extended window when the primary one is too thin. Priority leagues
// come first; the rest keep the provider's order.
func (s *Service) selectFixtures(live []model.FixtureSnapshot) ([]model.FixtureSnapshot, bool) {
	primary := inWindow(live, s.cfg.MinMinute, s.cfg.MaxMinute)
	selected, extended := primary, false
	if len(primary) < s.cfg.MinPrimaryMatches {
		selected = inWindow(live, s.cfg.ExtendedMinMinute, s.cfg.ExtendedMaxMinute)
		extended = len(selected) > len(primary)
	}

	slices.SortStableFunc(selected, func(a, b model.FixtureSnapshot) int {
		pa := slices.Contains(s.cfg.PriorityLeagues, a.League.ID)
		pb := slices.Contains(s.cfg.PriorityLeagues, b.League.ID)
		switch {
		case pa && !pb:
			return -1
		case pb && !pa:
			return 1
		}
		return 0
	})
	return selected, extended
}

func inWindow(live []model.FixtureSnapshot, lo, hi int) []model.FixtureSnapshot {
	out := make([]model.FixtureSnapshot, 0, len(live))
	for _, fx := range live {
		if fx.Minute >= lo && fx.Minute <= hi {
			out = append(out, fx)
		}
	}
	return out
}

// interval returns the delay before the next cycle, stretched when the
// daily provider quota runs low.
func (s *Service) interval() time.Duration {
	if s.source.Usage().DailyRemaining < s.cfg.LowQuotaThreshold {
		return s.cfg.LowQuotaInterval
	}
	return s.cfg.Interval
}

func (s *Service) maintain(ctx context.Context) {
	removed := s.alerts.Cleanup(ctx)
	pruned := 0
	if p, ok := s.source.(interface{ PruneCache() int }); ok {
		pruned = p.PruneCache()
	}
	s.logger.Debug(ctx, "maintenance",
		logger.Int("alerts_removed", removed),
		logger.Int("cache_pruned", pruned),
	)
}
