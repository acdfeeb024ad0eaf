// Package dedupe remembers the last analysed state of each fixture so an
// unchanged match is not recomputed on every scan.
package dedupe

import (
	"container/list"
	"context"
	"sync"

	"github.com/okian/goalwatch/internal/domain/model"
)

// State is the triple that decides whether a fixture changed materially.
type State struct {
	Score           string `json:"score"`
	Minute          int    `json:"minute"`
	LastEventMinute int    `json:"last_event_minute"`
}

// Entry is the cached state plus what the last full analysis produced.
type Entry struct {
	State          State                `json:"state"`
	Confidence     float64              `json:"confidence"`
	Classification model.Classification `json:"classification,omitempty"`
}

// StateOf builds the cache key triple for a fixture and its event log.
func StateOf(fx model.FixtureSnapshot, events model.EventLog) State {
	return State{
		Score:           fx.Score.String(),
		Minute:          fx.Minute,
		LastEventMinute: events.LastMinute(),
	}
}

// Cache tracks the last analysed state per fixture.
type Cache interface {
	// Unchanged reports whether the stored state for id equals s exactly.
	Unchanged(ctx context.Context, id int64, s State) bool

	// Get returns the stored entry for id.
	Get(ctx context.Context, id int64) (Entry, bool)

	// Store records the entry for id, replacing any previous one.
	Store(ctx context.Context, id int64, e Entry)

	// Forget drops id so the next analysis recomputes it.
	Forget(ctx context.Context, id int64)

	Size() int64
}

type item struct {
	id    int64
	entry Entry
}

// inMemoryCache is a mutex-guarded map with oldest-first eviction once
// maxSize is reached. maxSize <= 0 disables eviction.
type inMemoryCache struct {
	mu      sync.Mutex
	entries map[int64]*list.Element
	order   *list.List // front = most recently stored
	maxSize int
}

// NewInMemoryCache creates a state cache.
func NewInMemoryCache(opts ...Option) Cache {
	c := &inMemoryCache{
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = make(map[int64]*list.Element)
	c.order = list.New()
	return c
}

func (c *inMemoryCache) Unchanged(_ context.Context, id int64, s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[id]
	if !ok {
		return false
	}
	return el.Value.(*item).entry.State == s
}

func (c *inMemoryCache) Get(_ context.Context, id int64) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[id]
	if !ok {
		return Entry{}, false
	}
	return el.Value.(*item).entry, true
}

func (c *inMemoryCache) Store(_ context.Context, id int64, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[id]; ok {
		el.Value.(*item).entry = e
		c.order.MoveToFront(el)
		return
	}
	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[id] = c.order.PushFront(&item{id: id, entry: e})
}

func (c *inMemoryCache) Forget(_ context.Context, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[id]; ok {
		c.order.Remove(el)
		delete(c.entries, id)
	}
}

// evictOldest must be called with c.mu held.
func (c *inMemoryCache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.entries, el.Value.(*item).id)
}

func (c *inMemoryCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.entries))
}
