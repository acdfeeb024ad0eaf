// Package resilience guards calls to flaky dependencies.
package resilience

import (
	"context"
	"sync"
	"time"
)

// State is the breaker position.
type State int

// Breaker states. The numeric values are exported as a gauge.
const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half_open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Breaker trips open after consecutive failures and lets a limited number of
// probes through once the cool-down has passed.
type Breaker struct {
	mu sync.Mutex

	cfg Config
	now func() time.Time

	onChange func(from, to State)

	state     State
	failures  int
	openedAt  time.Time
	inFlight  int
	successes int
}

// New creates a breaker; cfg is normalized first.
func New(cfg Config, opts ...Option) *Breaker {
	b := &Breaker{
		cfg: cfg.Normalize(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allow reserves a slot for a call or returns ErrOpen.
func (b *Breaker) Allow() error {
	if !b.cfg.Enabled {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return ErrOpen
		}
		b.transition(StateHalfOpen)
	}
	if b.state == StateHalfOpen {
		if b.inFlight >= b.cfg.HalfOpenProbes {
			return ErrOpen
		}
		b.inFlight++
	}
	return nil
}

// Success records a successful call.
func (b *Breaker) Success() {
	if !b.cfg.Enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.release()
		b.successes++
		if b.successes >= b.cfg.HalfOpenProbes && b.inFlight == 0 {
			b.transition(StateClosed)
		}
	}
}

// Failure records a failed call.
func (b *Breaker) Failure() {
	if !b.cfg.Enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		b.release()
		b.transition(StateOpen)
	case StateOpen:
		b.openedAt = b.now()
	}
}

// Do runs fn under the breaker. Context cancellation is not counted as a
// dependency failure.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn(ctx)
	switch {
	case err == nil:
		b.Success()
	case ctx.Err() != nil:
		b.Release()
	default:
		b.Failure()
	}
	return err
}

// State reports the current position, treating an expired open state as
// half-open.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return StateHalfOpen
	}
	return b.state
}

// Release returns a half-open probe slot without recording an outcome, for
// calls abandoned by their caller.
func (b *Breaker) Release() {
	if !b.cfg.Enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateHalfOpen {
		b.release()
	}
}

func (b *Breaker) release() {
	if b.inFlight > 0 {
		b.inFlight--
	}
}

// transition must be called with b.mu held.
func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	b.failures = 0
	b.inFlight = 0
	b.successes = 0
	b.openedAt = time.Time{}
	if to == StateOpen {
		b.openedAt = b.now()
	}
	if b.onChange != nil && from != to {
		b.onChange(from, to)
	}
}
