package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock drives expiration in tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(cfg Config) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 10, 6, 12, 0, 0, 0, time.UTC)}
	c := New(cfg)
	c.now = clock.Now
	return c, clock
}

func TestCache_SlidingExpiration(t *testing.T) {
	c, clock := newTestCache(Config{TTL: time.Minute})
	c.Set("a", 1)
	c.Set("b", 2)

	clock.Advance(40 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a expired too early")
	}

	// a was renewed by the hit, b was not
	clock.Advance(40 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have been renewed")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("b should have expired")
	}

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Items != 1 {
		t.Errorf("Stats = %+v", stats)
	}
	if rate := stats.HitRate(); rate < 66 || rate > 67 {
		t.Errorf("HitRate = %v", rate)
	}
}

func TestCache_NeverExpires(t *testing.T) {
	c, clock := newTestCache(Config{})
	c.SetWithTTL("forever", "x", 0)
	clock.Advance(24 * time.Hour)
	if v, ok := c.Get("forever"); !ok || v != "x" {
		t.Errorf("Get = %v, %v", v, ok)
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, clock := newTestCache(Config{MaxItems: 2, TTL: time.Hour})
	c.Set("a", 1)
	clock.Advance(time.Second)
	c.Set("b", 2)
	clock.Advance(time.Second)
	c.Get("a")
	clock.Advance(time.Second)
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b was least recently used and should be evicted")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s should be cached", key)
		}
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d", c.Stats().Evictions)
	}
}

func TestCache_ExpiredEntriesMakeRoom(t *testing.T) {
	c, clock := newTestCache(Config{MaxItems: 2, TTL: time.Minute})
	c.Set("old", 1)
	c.SetWithTTL("keep", 2, time.Hour)
	clock.Advance(2 * time.Minute)
	c.Set("new", 3)

	if _, ok := c.Get("keep"); !ok {
		t.Error("keep should survive; the expired entry makes room")
	}
	if c.Stats().Evictions != 0 {
		t.Error("sweeping expired entries is not an eviction")
	}
}

func TestCache_DeletePrefix(t *testing.T) {
	c := New(Config{})
	c.Set("/lib/a.bayan@1", 1)
	c.Set("/lib/a.bayan@2", 2)
	c.Set("/lib/ab.bayan@1", 3)

	if n := c.DeletePrefix("/lib/a.bayan@"); n != 2 {
		t.Errorf("DeletePrefix removed %d, want 2", n)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
	c.Clear()
	if c.Size() != 0 {
		t.Error("Clear left items behind")
	}
}

func TestCache_GetOrSet(t *testing.T) {
	c := New(Config{})

	var calls int32
	release := make(chan struct{})
	compute := func() (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "unit", nil
	}

	var wg sync.WaitGroup
	results := make([]interface{}, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrSet("key", compute)
			if err != nil {
				t.Errorf("GetOrSet failed: %v", err)
			}
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compute ran %d times, want 1", n)
	}
	for i, v := range results {
		if v != "unit" {
			t.Errorf("result %d = %v", i, v)
		}
	}
}

func TestCache_GetOrSetErrorNotCached(t *testing.T) {
	c := New(Config{})
	boom := errors.New("boom")

	if _, err := c.GetOrSet("k", func() (interface{}, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	v, err := c.GetOrSet("k", func() (interface{}, error) { return 42, nil })
	if err != nil || v != 42 {
		t.Errorf("GetOrSet after error = %v, %v", v, err)
	}
}
