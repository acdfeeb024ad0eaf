package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, clock *fakeClock) *AlertStore {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	s := NewAlertStore(ctx, WithClock(clock.Now), WithCleanupInterval(time.Hour))
	t.Cleanup(func() {
		cancel()
		_ = s.Close()
	})
	return s
}

func TestAlertStore_RecordAndGet(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)}
	s := newTestStore(t, clock)

	if s.IsAlerted(ctx, 10) {
		t.Fatal("expected fixture 10 to be unknown")
	}

	a, err := s.Record(ctx, Alert{FixtureID: 10, Match: "A vs B", Score: "0-0", Minute: 65})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == "" {
		t.Error("expected an id to be assigned")
	}
	if a.Status != StatusActive {
		t.Errorf("expected status active, got %s", a.Status)
	}
	if !a.AlertedAt.Equal(clock.Now()) {
		t.Errorf("expected alerted_at %v, got %v", clock.Now(), a.AlertedAt)
	}
	if !s.IsAlerted(ctx, 10) {
		t.Error("expected fixture 10 to be alerted")
	}

	got, err := s.Get(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != a.ID || got.Match != "A vs B" {
		t.Errorf("unexpected alert %+v", got)
	}

	if _, err := s.Get(ctx, 11); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Record(ctx, Alert{}); !errors.Is(err, ErrInvalidAlert) {
		t.Errorf("expected ErrInvalidAlert, got %v", err)
	}
}

func TestAlertStore_MemoryWindow(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)}
	s := newTestStore(t, clock)

	if _, err := s.Record(ctx, Alert{FixtureID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock.Advance(23 * time.Hour)
	if !s.IsAlerted(ctx, 1) {
		t.Error("expected alert to be remembered inside the window")
	}
	if removed := s.Cleanup(ctx); removed != 0 {
		t.Errorf("expected nothing removed, got %d", removed)
	}

	clock.Advance(time.Hour)
	if s.IsAlerted(ctx, 1) {
		t.Error("expected alert to expire after 24h")
	}
	if removed := s.Cleanup(ctx); removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if n := s.Count(ctx); n != 0 {
		t.Errorf("expected count 0, got %d", n)
	}
}

func TestAlertStore_StatusAndStats(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)}
	s := newTestStore(t, clock)

	for _, id := range []int64{1, 2, 3} {
		if _, err := s.Record(ctx, Alert{FixtureID: id}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := s.SetStatus(ctx, 2, StatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetStatus(ctx, 9, StatusCompleted); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	st := s.Stats(ctx)
	want := Stats{Total: 3, Active: 2, Completed: 1, Last24h: 3}
	if st != want {
		t.Errorf("expected %+v, got %+v", want, st)
	}
}

func TestAlertStore_Recent(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)}
	s := newTestStore(t, clock)

	for _, id := range []int64{5, 6, 7} {
		if _, err := s.Record(ctx, Alert{FixtureID: id}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		clock.Advance(time.Minute)
	}

	recent, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(recent))
	}
	if recent[0].FixtureID != 7 || recent[1].FixtureID != 6 {
		t.Errorf("expected newest first, got %d, %d", recent[0].FixtureID, recent[1].FixtureID)
	}

	if _, err := s.Recent(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestAlertStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	s := newTestStore(t, clock)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := int64(g*100 + i + 1)
				if _, err := s.Record(ctx, Alert{FixtureID: id}); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				s.IsAlerted(ctx, id)
			}
		}(g)
	}
	wg.Wait()

	if n := s.Count(ctx); n != 400 {
		t.Errorf("expected 400 alerts, got %d", n)
	}
}
