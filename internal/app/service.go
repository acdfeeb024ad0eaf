// Package service runs the live scan loop: it pulls fixtures in the
// analysis window, queues them for the workers, dispatches qualifying
// results and records them in the alert history.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/okian/goalwatch/internal/adapters/mq/queue"
	"github.com/okian/goalwatch/internal/adapters/mq/worker"
	"github.com/okian/goalwatch/internal/adapters/provider"
	"github.com/okian/goalwatch/internal/adapters/repository"
	"github.com/okian/goalwatch/internal/app/analyzer"
	"github.com/okian/goalwatch/internal/config"
	"github.com/okian/goalwatch/internal/domain/dedupe"
	"github.com/okian/goalwatch/internal/domain/engine"
	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/logger"
	"github.com/okian/goalwatch/pkg/metrics"
)

const dispatchDrainTimeout = 15 * time.Second

// Source lists live fixtures and reports how much provider quota is left.
type Source interface {
	LiveFixtures(ctx context.Context) ([]model.FixtureSnapshot, error)
	Usage() provider.Usage
}

// Analyzer evaluates one fixture.
type Analyzer interface {
	Analyze(ctx context.Context, fx model.FixtureSnapshot) (analyzer.Outcome, error)
	State(ctx context.Context, fixtureID int64) (dedupe.Entry, bool)
	Forget(ctx context.Context, fixtureID int64)
	CacheSize() int64
	Engine() *engine.Engine
	SetConfig(cfg engine.Config) error
}

// Dispatcher delivers a qualifying result.
type Dispatcher interface {
	Dispatch(ctx context.Context, r model.AnalysisResult) error
}

// Stats is a point-in-time view of the service for monitoring.
type Stats struct {
	Started        bool             `json:"started"`
	Paused         bool             `json:"paused"`
	Workers        int              `json:"workers"`
	QueueLength    int              `json:"queue_length"`
	QueueCapacity  int              `json:"queue_capacity"`
	Cycles         int64            `json:"cycles"`
	LastScan       time.Time        `json:"last_scan,omitempty"`
	LastInWindow   int              `json:"last_in_window"`
	Analyzed       int64            `json:"analyzed"`
	Qualified      int64            `json:"qualified"`
	Dispatched     int64            `json:"dispatched"`
	DispatchFailed int64            `json:"dispatch_failed"`
	CachedFixtures int64            `json:"cached_fixtures"`
	NextScanIn     time.Duration    `json:"next_scan_in"`
	Alerts         repository.Stats `json:"alerts"`
	Quota          provider.Usage   `json:"quota"`
}

// Service wires the scanner, workers and dispatch together.
type Service struct {
	mu sync.RWMutex

	source     Source
	analyzer   Analyzer
	dispatcher Dispatcher
	alerts     repository.Store

	cfg          config.ScannerConfig
	initialDelay time.Duration
	logger       logger.Logger
	now          func() time.Time

	jobs     *queue.InMemoryQueue
	pool     *worker.Pool
	delivery *ants.Pool
	inflight sync.WaitGroup

	started bool
	paused  atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	cycles         atomic.Int64
	analyzed       atomic.Int64
	qualified      atomic.Int64
	dispatched     atomic.Int64
	dispatchFailed atomic.Int64
	lastInWindow   atomic.Int64
	lastScan       atomic.Int64
}

// New constructs a Service. Nothing runs until Start.
func New(src Source, an Analyzer, d Dispatcher, alerts repository.Store, opts ...Option) *Service {
	s := &Service{
		source:     src,
		analyzer:   an,
		dispatcher: d,
		alerts:     alerts,
		cfg:        config.New().Scanner,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start launches the worker pool, the scan loop and the maintenance loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	delivery, err := ants.NewPool(s.cfg.DispatchPoolSize)
	if err != nil {
		return err
	}
	s.delivery = delivery
	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.cfg.QueueSize))
	s.pool = worker.NewPool(s.cfg.WorkerCount, s.jobs, worker.HandlerFunc(s.handle), worker.WithLogger(s.logger.Named("worker")))
	s.pool.Start(ctx)

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.run(ctx)

	s.started = true
	metrics.UpdatePaused(s.paused.Load())
	s.logger.Info(ctx, "scanner started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.cfg.QueueSize),
		logger.Duration("interval", s.cfg.Interval),
		logger.Int("min_minute", s.cfg.MinMinute),
		logger.Int("max_minute", s.cfg.MaxMinute),
	)
	return nil
}

// Stop halts the scan loop, drains the workers and waits for in-flight
// dispatches.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping scanner...")

	close(s.stopCh)
	<-s.doneCh

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}

	drained := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(dispatchDrainTimeout):
		s.logger.Warn(ctx, "pending dispatches abandoned")
	}
	s.delivery.Release()

	s.started = false
	s.logger.Info(ctx, "scanner stopped")
}

// Pause stops the scanner from calling the provider until Resume.
func (s *Service) Pause(ctx context.Context) {
	if !s.paused.Swap(true) {
		s.logger.Info(ctx, "scanner paused")
	}
	metrics.UpdatePaused(true)
}

// Resume re-enables scanning.
func (s *Service) Resume(ctx context.Context) {
	if s.paused.Swap(false) {
		s.logger.Info(ctx, "scanner resumed")
	}
	metrics.UpdatePaused(false)
}

// Paused reports whether scanning is suspended.
func (s *Service) Paused() bool { return s.paused.Load() }

// SetEngineConfig swaps the engine configuration used by new analyses.
func (s *Service) SetEngineConfig(cfg engine.Config) error {
	return s.analyzer.SetConfig(cfg)
}

// Evaluate runs the pure engine over a caller supplied snapshot. Missing
// form inputs use the neutral defaults.
func (s *Service) Evaluate(snap model.Snapshot) engine.Verdict { //nolint:gocritic // hugeParam
	eng := s.analyzer.Engine()
	form := eng.Config().Form.Neutral()
	if snap.Form != nil {
		form = *snap.Form
	}
	return eng.Evaluate(engine.Input{
		Fixture: snap.Fixture,
		Stats:   snap.Statistics,
		Events:  snap.Events,
	}, form)
}

// FixtureState returns the cached analysis state of a fixture.
func (s *Service) FixtureState(ctx context.Context, fixtureID int64) (dedupe.Entry, bool) {
	return s.analyzer.State(ctx, fixtureID)
}

// Alerts returns the most recent alerts, newest first.
func (s *Service) Alerts(ctx context.Context, limit int) ([]repository.Alert, error) {
	return s.alerts.Recent(ctx, limit)
}

// Alert returns the alert recorded for a fixture.
func (s *Service) Alert(ctx context.Context, fixtureID int64) (repository.Alert, error) {
	return s.alerts.Get(ctx, fixtureID)
}

// CompleteAlert marks a fixture's alert as completed.
func (s *Service) CompleteAlert(ctx context.Context, fixtureID int64) error {
	return s.alerts.SetStatus(ctx, fixtureID, repository.StatusCompleted)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Started:        s.started,
		Paused:         s.paused.Load(),
		QueueCapacity:  s.cfg.QueueSize,
		Cycles:         s.cycles.Load(),
		LastInWindow:   int(s.lastInWindow.Load()),
		Analyzed:       s.analyzed.Load(),
		Qualified:      s.qualified.Load(),
		Dispatched:     s.dispatched.Load(),
		DispatchFailed: s.dispatchFailed.Load(),
		CachedFixtures: s.analyzer.CacheSize(),
		NextScanIn:     s.interval(),
		Alerts:         s.alerts.Stats(ctx),
		Quota:          s.source.Usage(),
	}
	if ts := s.lastScan.Load(); ts > 0 {
		st.LastScan = time.Unix(0, ts).UTC()
	}
	if s.started {
		st.Workers = s.pool.Size()
		st.QueueLength = s.jobs.Len(ctx)
	}
	return st
}

// handle is the worker handler: analyze, then hand qualifying results to
// the dispatch pool.
func (s *Service) handle(ctx context.Context, fx model.FixtureSnapshot) error { //nolint:gocritic // hugeParam
	out, err := s.analyzer.Analyze(ctx, fx)
	s.analyzed.Add(1)
	if err != nil {
		return err
	}
	if !out.Qualified() {
		return nil
	}
	s.qualified.Add(1)

	r := *out.Result
	s.inflight.Add(1)
	if err := s.delivery.Submit(func() {
		defer s.inflight.Done()
		s.deliver(ctx, r)
	}); err != nil {
		s.inflight.Done()
		metrics.RecordErrorByComponent("service", "dispatch_submit")
		s.deliver(ctx, r)
	}
	return nil
}

// deliver dispatches one result and records it. A failed dispatch forgets
// the cached state so the next cycle can report the fixture again.
func (s *Service) deliver(ctx context.Context, r model.AnalysisResult) { //nolint:gocritic // hugeParam
	if err := s.dispatcher.Dispatch(ctx, r); err != nil {
		s.analyzer.Forget(ctx, r.FixtureID)
		s.dispatchFailed.Add(1)
		s.logger.Error(ctx, "alert dispatch failed",
			logger.Int64("fixture_id", r.FixtureID),
			logger.Error(err),
		)
		return
	}
	s.dispatched.Add(1)

	alert, err := s.alerts.Record(ctx, repository.Alert{
		ID:             r.ID,
		FixtureID:      r.FixtureID,
		Match:          r.Match(),
		League:         r.League,
		Minute:         r.Minute,
		Score:          r.Score,
		Classification: string(r.Classification),
		Confidence:     r.Confidence,
	})
	if err != nil {
		s.logger.Error(ctx, "failed to record alert", logger.Int64("fixture_id", r.FixtureID), logger.Error(err))
		return
	}
	s.logger.Info(ctx, "alert sent",
		logger.String("alert_id", alert.ID),
		logger.String("match", alert.Match),
		logger.Int("minute", alert.Minute),
		logger.String("score", alert.Score),
		logger.String("classification", alert.Classification),
		logger.Float64("confidence", alert.Confidence),
	)
}
