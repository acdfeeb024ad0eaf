// Package queue buffers live fixtures between the scanner and the analysis workers.
//
// The in-memory implementation is a bounded channel that also remembers
// which fixtures are waiting, so a slow cycle never queues the same
// fixture twice.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/metrics"
)

const (
	defaultQueueCapacity = 256
	drainPollInterval    = 10 * time.Millisecond
)

// Job is the payload flowing through the queue.
type Job = model.FixtureSnapshot

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a fixture to the queue. It returns ErrFull, ErrClosed
	// or ErrPending when the fixture was not accepted.
	Enqueue(ctx context.Context, j Job) error

	// Dequeue returns a channel that receives jobs as they become available.
	// The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the number of queued jobs.
	Len(ctx context.Context) int

	// Close stops accepting jobs.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu      sync.RWMutex
	closed  bool
	pending map[int64]struct{}
}

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		pending:  make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds a fixture to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: jobs travel by value
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.reject("closed")
		return ErrClosed
	}
	if _, ok := q.pending[j.ID]; ok {
		return ErrPending
	}
	if err := ctx.Err(); err != nil {
		q.reject("context_cancelled")
		return err
	}

	select {
	case q.jobs <- j:
		q.pending[j.ID] = struct{}{}
		metrics.RecordQueueEnqueue()
		q.observe()
		return nil
	default:
		q.reject("queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that receives jobs as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case j, ok := <-q.jobs:
				if !ok {
					return
				}
				q.mu.Lock()
				delete(q.pending, j.ID)
				q.mu.Unlock()
				metrics.RecordQueueDequeue()
				q.observe()

				select {
				case out <- j:
				case <-ctx.Done():
					q.putBack(j)
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	q.observe()
	return len(q.jobs)
}

// Pending reports whether the fixture is waiting in the queue.
func (q *InMemoryQueue) Pending(id int64) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	_, ok := q.pending[id]
	return ok
}

// Close stops accepting jobs. Queued jobs are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) observe() {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

// putBack returns a job whose consumer went away before taking it. The job
// is dropped when the queue is closed, full, or already holds a newer copy.
func (q *InMemoryQueue) putBack(j Job) { //nolint:gocritic // hugeParam
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.pending[j.ID]; ok {
		return
	}
	if !q.closed {
		select {
		case q.jobs <- j:
			q.pending[j.ID] = struct{}{}
			q.observe()
			return
		default:
		}
	}
	q.reject("dropped")
}

func (q *InMemoryQueue) reject(reason string) {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", reason)
}

// Drain blocks until the queue is empty or ctx is done.
func (q *InMemoryQueue) Drain(ctx context.Context) error {
	t := time.NewTicker(drainPollInterval)
	defer t.Stop()
	for len(q.jobs) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}
