package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 8, 24, 14, 0, 0, 0, time.UTC)}
}

func TestGetOrSet(t *testing.T) {
	clock := newClock()
	c := New[string](300*time.Second, WithClock(clock.Now))

	var calls int
	fn := func() (string, error) {
		calls++
		return "value", nil
	}

	tests := []struct {
		name      string
		advance   time.Duration
		force     bool
		wantCalls int
	}{
		{name: "first call computes", wantCalls: 1},
		{name: "within ttl hits cache", advance: 299 * time.Second, wantCalls: 1},
		{name: "after ttl recomputes", advance: time.Second, wantCalls: 2},
		{name: "fresh entry is reused", advance: 10 * time.Second, wantCalls: 2},
		{name: "force update recomputes", force: true, wantCalls: 3},
	}

	for _, tt := range tests {
		clock.Advance(tt.advance)
		got, err := c.GetOrSet("https://example.com/a.csv", fn, tt.force)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got != "value" {
			t.Errorf("%s: got %q, want %q", tt.name, got, "value")
		}
		if calls != tt.wantCalls {
			t.Errorf("%s: calls = %d, want %d", tt.name, calls, tt.wantCalls)
		}
	}
}

func TestGetOrSetErrorNotCached(t *testing.T) {
	c := New[int](time.Minute)
	errBoom := errors.New("boom")

	calls := 0
	_, err := c.GetOrSet("k", func() (int, error) {
		calls++
		return 0, errBoom
	}, false)
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected boom error, got %v", err)
	}

	got, err := c.GetOrSet("k", func() (int, error) {
		calls++
		return 42, nil
	}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 || calls != 2 {
		t.Errorf("got %d after %d calls, want 42 after 2 calls", got, calls)
	}
}

func TestGetOrSetKeysAreIndependent(t *testing.T) {
	c := New[string](time.Minute)

	a, _ := c.GetOrSet("a", func() (string, error) { return "A", nil }, false)
	b, _ := c.GetOrSet("b", func() (string, error) { return "B", nil }, false)
	if a != "A" || b != "B" {
		t.Errorf("got a=%q b=%q", a, b)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestGetOrSetConcurrent(t *testing.T) {
	c := New[string](time.Minute)

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func() (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]string, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrSet("same", fn, false)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = v
		}()
	}

	// let the first caller enter fn before releasing it
	for calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("fn called %d times, want 1", n)
	}
	for i, v := range results {
		if v != "shared" {
			t.Errorf("worker %d got %q", i, v)
		}
	}
}

func TestExpiredEntryIsDroppedOnRead(t *testing.T) {
	clock := newClock()
	c := New[string](time.Minute, WithClock(clock.Now))
	c.Set("k", "v")

	clock.Advance(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to be expired")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after lazy eviction", c.Len())
	}
}

func TestLenCountsLiveEntries(t *testing.T) {
	clock := newClock()
	c := New[string](time.Minute, WithClock(clock.Now))
	c.Set("old", "v")

	clock.Advance(30 * time.Second)
	c.Set("new", "v")
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	clock.Advance(30 * time.Second)
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 once the first entry expired unread", c.Len())
	}

	clock.Advance(time.Minute)
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestNewDefaultsTTL(t *testing.T) {
	c := New[string](0)
	if c.TTL() != DefaultTTL {
		t.Errorf("TTL() = %v, want %v", c.TTL(), DefaultTTL)
	}
}
