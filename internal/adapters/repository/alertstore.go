package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/goalwatch/pkg/metrics"
)

var _ Store = (*AlertStore)(nil)

// AlertStore is an in-memory Store keyed by fixture.
type AlertStore struct {
	mu              sync.RWMutex
	byFixture       map[int64]Alert
	window          time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewAlertStore constructs an alert store and starts the background cleanup.
func NewAlertStore(ctx context.Context, opts ...Option) *AlertStore {
	s := &AlertStore{
		byFixture:       make(map[int64]Alert),
		window:          24 * time.Hour,
		cleanupInterval: time.Hour,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stopChan = make(chan struct{})
	s.startCleanup(ctx)
	return s
}

func (s *AlertStore) startCleanup(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Cleanup(ctx)
			}
		}
	}()
}

// Close stops the background cleanup.
func (s *AlertStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *AlertStore) IsAlerted(_ context.Context, fixtureID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byFixture[fixtureID]
	return ok && s.now().Sub(a.AlertedAt) < s.window
}

func (s *AlertStore) Record(_ context.Context, a Alert) (Alert, error) {
	if a.FixtureID <= 0 {
		metrics.RecordErrorByComponent("repository", "invalid_alert")
		return Alert{}, ErrInvalidAlert
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AlertedAt.IsZero() {
		a.AlertedAt = s.now()
	}
	if a.Status == "" {
		a.Status = StatusActive
	}

	s.mu.Lock()
	s.byFixture[a.FixtureID] = a
	n := len(s.byFixture)
	s.mu.Unlock()

	metrics.UpdateTrackedAlerts(n)
	return a, nil
}

func (s *AlertStore) SetStatus(_ context.Context, fixtureID int64, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byFixture[fixtureID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return ErrNotFound
	}
	a.Status = status
	s.byFixture[fixtureID] = a
	return nil
}

func (s *AlertStore) Get(_ context.Context, fixtureID int64) (Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byFixture[fixtureID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Alert{}, ErrNotFound
	}
	return a, nil
}

func (s *AlertStore) Recent(_ context.Context, limit int) ([]Alert, error) {
	if limit <= 0 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	out := make([]Alert, 0, len(s.byFixture))
	for _, a := range s.byFixture {
		out = append(out, a)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].AlertedAt.Equal(out[j].AlertedAt) {
			return out[i].FixtureID < out[j].FixtureID
		}
		return out[i].AlertedAt.After(out[j].AlertedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *AlertStore) Cleanup(_ context.Context) int {
	now := s.now()

	s.mu.Lock()
	removed := 0
	for id, a := range s.byFixture {
		if now.Sub(a.AlertedAt) >= s.window {
			delete(s.byFixture, id)
			removed++
		}
	}
	n := len(s.byFixture)
	s.mu.Unlock()

	metrics.UpdateTrackedAlerts(n)
	return removed
}

func (s *AlertStore) Stats(_ context.Context) Stats {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Total: len(s.byFixture)}
	for _, a := range s.byFixture {
		switch a.Status {
		case StatusActive:
			st.Active++
		case StatusCompleted:
			st.Completed++
		}
		if now.Sub(a.AlertedAt) < 24*time.Hour {
			st.Last24h++
		}
	}
	return st
}

func (s *AlertStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byFixture)
}
