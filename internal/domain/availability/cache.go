package availability

import (
	"context"
	"sync"

	"github.com/BruksfildServices01/meister-web/internal/domain/calendar"
)

type Status int

const (
	// StatusUnknown means the key was never requested (or was reset).
	StatusUnknown Status = iota
	StatusPending
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Entry is the view of one key. Free is only set when Status is loaded.
type Entry struct {
	Status Status
	Free   map[calendar.Date]int
}

// FreeOn returns the free count of d. Days missing from a loaded month
// count as zero.
func (e Entry) FreeOn(d calendar.Date) int {
	return e.Free[d]
}

// Fetcher loads the day -> free-count map of the month in key.
type Fetcher func(ctx context.Context, key Key) (map[calendar.Date]int, error)

// Observer is told how each fetch ended. Optional.
type Observer func(key Key, status Status)

type flight struct {
	gen  uint64
	done chan struct{}
}

// Cache is the per-wizard store of month availability. Entries are only
// written by fetch completion, and only when the fetch's generation is
// still the current one for its key.
type Cache struct {
	mu       sync.Mutex
	gen      uint64
	entries  map[Key]Entry
	inflight map[Key]*flight
	observe  Observer
}

func NewCache(observe Observer) *Cache {
	return &Cache{
		entries:  make(map[Key]Entry),
		inflight: make(map[Key]*flight),
		observe:  observe,
	}
}

// EnsureMonthLoaded starts a fetch for key unless the key is loaded,
// failed or already in flight. It reports whether a fetch was issued.
// The fetch outlives ctx's cancellation so that a finished request is not
// thrown away; staleness is decided by generation instead.
func (c *Cache) EnsureMonthLoaded(ctx context.Context, key Key, fetch Fetcher) bool {
	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return false
	}
	if _, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		return false
	}
	c.gen++
	f := &flight{gen: c.gen, done: make(chan struct{})}
	c.inflight[key] = f
	c.mu.Unlock()

	go c.run(context.WithoutCancel(ctx), key, f, fetch)
	return true
}

func (c *Cache) run(ctx context.Context, key Key, f *flight, fetch Fetcher) {
	defer close(f.done)

	free, err := fetch(ctx, key)

	entry := Entry{Status: StatusLoaded, Free: free}
	if err != nil {
		entry = Entry{Status: StatusFailed}
	} else if entry.Free == nil {
		entry.Free = map[calendar.Date]int{}
	}

	c.mu.Lock()
	current, ok := c.inflight[key]
	if !ok || current.gen != f.gen {
		c.mu.Unlock()
		return
	}
	delete(c.inflight, key)
	c.entries[key] = entry
	c.mu.Unlock()

	if c.observe != nil {
		c.observe(key, entry.Status)
	}
}

func (c *Cache) Get(key Key) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e
	}
	if _, ok := c.inflight[key]; ok {
		return Entry{Status: StatusPending}
	}
	return Entry{Status: StatusUnknown}
}

// Loading reports whether key has a fetch in flight.
func (c *Cache) Loading(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[key]
	return ok
}

// Await blocks until key is no longer pending or ctx is done, then returns
// the current entry.
func (c *Cache) Await(ctx context.Context, key Key) Entry {
	c.mu.Lock()
	f, ok := c.inflight[key]
	c.mu.Unlock()
	if ok {
		select {
		case <-f.done:
		case <-ctx.Done():
		}
	}
	return c.Get(key)
}

// Reset drops every entry and orphans in-flight fetches; their results are
// discarded on arrival.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]Entry)
	c.inflight = make(map[Key]*flight)
}
