package provider

import (
	"sync"
	"time"
)

// Usage is a point-in-time view of request consumption.
type Usage struct {
	RequestsToday    int `json:"requests_today"`
	RequestsThisHour int `json:"requests_this_hour"`
	DailyRemaining   int `json:"daily_remaining"`
	HourlyRemaining  int `json:"hourly_remaining"`
}

// Quota tracks daily and hourly request consumption. Once the remaining
// daily budget falls inside the emergency buffer, only the upper half of
// the buffer may still be spent.
type Quota struct {
	mu sync.Mutex

	daily  int
	hourly int
	buffer int
	now    func() time.Time

	today     int
	thisHour  int
	dayStart  time.Time
	hourStart time.Time
}

// NewQuota creates a tracker. now may be nil.
func NewQuota(daily, hourly, buffer int, now func() time.Time) *Quota {
	if now == nil {
		now = time.Now
	}
	t := now().UTC()
	return &Quota{
		daily:     daily,
		hourly:    hourly,
		buffer:    buffer,
		now:       now,
		dayStart:  t.Truncate(24 * time.Hour),
		hourStart: t,
	}
}

// Allow returns ErrQuotaExhausted when no request may be made.
func (q *Quota) Allow() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.roll()

	remaining := q.daily - q.today
	switch {
	case remaining <= 0:
		return ErrQuotaExhausted
	case remaining <= q.buffer && float64(remaining) <= float64(q.buffer)*0.5:
		return ErrQuotaExhausted
	}
	return nil
}

// Record counts one request against the budgets.
func (q *Quota) Record() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.roll()
	q.today++
	q.thisHour++
}

// Remaining returns the daily requests left.
func (q *Quota) Remaining() int {
	return q.Usage().DailyRemaining
}

// Usage reports current consumption.
func (q *Quota) Usage() Usage {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.roll()
	return Usage{
		RequestsToday:    q.today,
		RequestsThisHour: q.thisHour,
		DailyRemaining:   q.daily - q.today,
		HourlyRemaining:  q.hourly - q.thisHour,
	}
}

// roll resets counters at UTC day and hour boundaries. Must be called with q.mu held.
func (q *Quota) roll() {
	t := q.now().UTC()
	if day := t.Truncate(24 * time.Hour); day.After(q.dayStart) {
		q.today = 0
		q.dayStart = day
	}
	if t.Sub(q.hourStart) >= time.Hour {
		q.thisHour = 0
		q.hourStart = t
	}
}
