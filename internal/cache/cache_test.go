package cache

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook-dev/tallybook/internal/model"
)

func testRecords(orderNos ...string) []model.Record {
	records := make([]model.Record, len(orderNos))
	for i, no := range orderNos {
		records[i] = model.Record{OrderNo: no}
	}
	return records
}

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(opts Options) (*Cache, *fakeClock) {
	c := New(opts, zerolog.Nop())
	clock := newFakeClock()
	c.now = clock.Now
	return c, clock
}

func countingLoader(records []model.Record, calls *atomic.Int64) Loader {
	return func(key string) ([]model.Record, error) {
		calls.Add(1)
		return records, nil
	}
}

func TestGet_HitServesWithoutLoader(t *testing.T) {
	c, _ := newTestCache(Options{})
	var calls atomic.Int64
	load := countingLoader(testRecords("A1"), &calls)

	got, err := c.Get("/u/alice.csv", load)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.EqualValues(t, 1, calls.Load())

	got, err = c.Get("/u/alice.csv", load)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.EqualValues(t, 1, calls.Load(), "second read must be a hit")

	hits, misses := c.Stats()
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 1, misses)
}

func TestGet_ExpiryReloads(t *testing.T) {
	c, clock := newTestCache(Options{ExpireAfterWrite: time.Minute})
	var calls atomic.Int64
	load := countingLoader(testRecords("A1"), &calls)

	_, err := c.Get("k", load)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)

	_, err = c.Get("k", load)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load(), "expired entry counts as a miss")
}

func TestPut_WriteThrough(t *testing.T) {
	c, _ := newTestCache(Options{})
	var calls atomic.Int64
	load := countingLoader(testRecords("old"), &calls)

	c.Put("k", testRecords("new-1", "new-2"))

	got, err := c.Get("k", load)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.EqualValues(t, 0, calls.Load(), "put value must be served without loading")
}

func TestInvalidate_ForcesReload(t *testing.T) {
	c, _ := newTestCache(Options{})
	var calls atomic.Int64
	load := countingLoader(testRecords("A1"), &calls)

	_, err := c.Get("k", load)
	require.NoError(t, err)
	c.Invalidate("k")

	_, err = c.Get("k", load)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestGet_LoaderErrorNotCached(t *testing.T) {
	c, _ := newTestCache(Options{})
	boom := errors.New("disk on fire")
	var calls atomic.Int64
	load := func(key string) ([]model.Record, error) {
		calls.Add(1)
		return nil, boom
	}

	_, err := c.Get("k", load)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len(), "failed load must not poison the cache")

	_, err = c.Get("k", load)
	require.ErrorIs(t, err, boom)
	assert.EqualValues(t, 2, calls.Load())
}

func TestLRUEviction(t *testing.T) {
	c, _ := newTestCache(Options{MaxEntries: 2})
	var calls atomic.Int64
	load := countingLoader(testRecords("x"), &calls)

	_, err := c.Get("a", load)
	require.NoError(t, err)
	_, err = c.Get("b", load)
	require.NoError(t, err)

	// Touch "a" so "b" becomes least recently used.
	_, err = c.Get("a", load)
	require.NoError(t, err)

	_, err = c.Get("c", load)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	calls.Store(0)
	_, err = c.Get("a", load)
	require.NoError(t, err)
	assert.EqualValues(t, 0, calls.Load(), "a must have survived")

	_, err = c.Get("b", load)
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load(), "b must have been evicted")
}

func TestRefreshAfterWrite_ServesStaleAndReloads(t *testing.T) {
	c, clock := newTestCache(Options{
		ExpireAfterWrite:  10 * time.Minute,
		RefreshAfterWrite: time.Minute,
	})

	var gen atomic.Int64
	load := func(key string) ([]model.Record, error) {
		n := gen.Add(1)
		return testRecords(fmt.Sprintf("gen-%d", n)), nil
	}

	got, err := c.Get("k", load)
	require.NoError(t, err)
	assert.Equal(t, "gen-1", got[0].OrderNo)

	clock.Advance(2 * time.Minute)

	// Stale but not expired: served immediately, refresh runs behind.
	got, err = c.Get("k", load)
	require.NoError(t, err)
	assert.Equal(t, "gen-1", got[0].OrderNo, "stale value served during refresh window")

	require.Eventually(t, func() bool {
		got, err := c.Get("k", load)
		return err == nil && got[0].OrderNo == "gen-2"
	}, 2*time.Second, 10*time.Millisecond, "background refresh must land")
}

func TestConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(Options{MaxEntries: 4})
	load := func(key string) ([]model.Record, error) {
		return testRecords(key), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%3)
			for j := 0; j < 100; j++ {
				switch j % 3 {
				case 0:
					_, _ = c.Get(key, load)
				case 1:
					c.Put(key, testRecords(key))
				default:
					c.Invalidate(key)
				}
			}
		}(i)
	}
	wg.Wait()
}
