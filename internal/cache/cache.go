// Package cache provides a bounded, time-expiring read-through cache of
// record collections keyed by file path. It fronts the durable store so
// repeated reads of the same user's ledger avoid file I/O.
//
// All operations are safe for concurrent use. The load-then-store sequence
// is intentionally not serialized per key: two concurrent misses may both
// invoke the loader and the last Put wins. Both loads see the same
// committed file, so the race is benign.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// Loader fetches the authoritative collection for a key on a miss.
type Loader func(key string) ([]model.Record, error)

// Options configure a Cache. Zero values use the defaults from
// DefaultOptions.
type Options struct {
	// MaxEntries bounds the total entry count across keys. The least
	// recently used key is evicted when exceeded.
	MaxEntries int
	// ExpireAfterWrite makes entries older than this count as misses.
	ExpireAfterWrite time.Duration
	// RefreshAfterWrite, when > 0 and shorter than ExpireAfterWrite,
	// serves a moderately stale entry once while a background reload
	// runs. Callers never block on the refresh.
	RefreshAfterWrite time.Duration
}

// DefaultOptions returns the configuration used by New when fields are zero.
func DefaultOptions() Options {
	return Options{
		MaxEntries:       64,
		ExpireAfterWrite: 5 * time.Minute,
	}
}

type entry struct {
	key        string
	records    []model.Record
	writtenAt  time.Time
	elem       *list.Element
	refreshing bool
}

// Cache is a bounded TTL map from file path to that file's record
// collection.
type Cache struct {
	mu      sync.Mutex
	opts    Options
	entries map[string]*entry
	lru     *list.List // front = most recently used
	log     zerolog.Logger
	now     func() time.Time

	statHits   uint64
	statMisses uint64
}

// New creates a Cache.
func New(opts Options, log zerolog.Logger) *Cache {
	def := DefaultOptions()
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = def.MaxEntries
	}
	if opts.ExpireAfterWrite <= 0 {
		opts.ExpireAfterWrite = def.ExpireAfterWrite
	}
	return &Cache{
		opts:    opts,
		entries: make(map[string]*entry),
		lru:     list.New(),
		log:     log,
		now:     time.Now,
	}
}

// Get returns the collection for key. A hit within the expiry window is
// served without invoking load. On a miss or an expired entry, load runs
// outside the cache lock and its result is installed with a fresh
// timestamp. A loader error propagates and nothing is cached.
func (c *Cache) Get(key string, load Loader) ([]model.Record, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		age := c.now().Sub(e.writtenAt)
		if age < c.opts.ExpireAfterWrite {
			c.statHits++
			c.lru.MoveToFront(e.elem)
			records := e.records
			if c.opts.RefreshAfterWrite > 0 && age >= c.opts.RefreshAfterWrite && !e.refreshing {
				e.refreshing = true
				go c.refresh(key, load)
			}
			c.mu.Unlock()
			return records, nil
		}
		c.removeLocked(e)
	}
	c.statMisses++
	c.mu.Unlock()

	records, err := load(key)
	if err != nil {
		return nil, err
	}
	c.Put(key, records)
	return records, nil
}

// Put unconditionally installs a value with a fresh timestamp. Writers use
// it after a mutation when the authoritative post-mutation collection is
// already in hand.
func (c *Cache) Put(key string, records []model.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(key, records)
}

// Invalidate removes the entry for key, forcing the next Get to reload.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.removeLocked(e)
	}
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statHits, c.statMisses
}

// refresh reloads key in the background after a stale hit. A failed reload
// keeps the stale entry; it will expire on its own.
func (c *Cache) refresh(key string, load Loader) {
	records, err := load(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if err != nil {
		c.log.Warn().Str("key", key).Err(err).Msg("background cache refresh failed")
		if ok {
			e.refreshing = false
		}
		return
	}
	if !ok {
		c.putLocked(key, records)
		return
	}
	e.records = records
	e.writtenAt = c.now()
	e.refreshing = false
}

func (c *Cache) putLocked(key string, records []model.Record) {
	if e, ok := c.entries[key]; ok {
		e.records = records
		e.writtenAt = c.now()
		e.refreshing = false
		c.lru.MoveToFront(e.elem)
		return
	}

	e := &entry{key: key, records: records, writtenAt: c.now()}
	e.elem = c.lru.PushFront(e)
	c.entries[key] = e

	for len(c.entries) > c.opts.MaxEntries {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest.Value.(*entry))
	}
}

func (c *Cache) removeLocked(e *entry) {
	c.lru.Remove(e.elem)
	delete(c.entries, e.key)
}
