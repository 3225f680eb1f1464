package throttle

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is advanced by hand
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRateLimit(t *testing.T) {
	clock := newFakeClock()
	tracker := newTrackerWithClock(Config{Enabled: true, MaxEvents: 3, Window: time.Second}, clock.now)

	for i := 0; i < 3; i++ {
		if r := tracker.Check(""); !r.Allowed {
			t.Fatalf("event %d should be allowed", i+1)
		}
		clock.advance(100 * time.Millisecond)
	}

	r := tracker.Check("")
	if r.Allowed {
		t.Fatal("4th event should be blocked")
	}
	if r.Wait != 700*time.Millisecond {
		t.Errorf("Wait = %v, want 700ms", r.Wait)
	}

	clock.advance(r.Wait)
	if r := tracker.Check(""); !r.Allowed {
		t.Errorf("event after the window should be allowed: %s", r.Reason)
	}
}

func TestRepeatCooldown(t *testing.T) {
	clock := newFakeClock()
	tracker := newTrackerWithClock(Config{Enabled: true, MaxEvents: 10, Window: 10 * time.Second, RepeatCooldown: time.Second}, clock.now)

	if r := tracker.Check("42"); !r.Allowed {
		t.Fatal("first use of a key should be allowed")
	}
	r := tracker.Check("42")
	if r.Allowed {
		t.Fatal("repeated key should be blocked")
	}
	if r.Wait != time.Second {
		t.Errorf("Wait = %v, want 1s", r.Wait)
	}
	if r := tracker.Check("43"); !r.Allowed {
		t.Error("different key should be allowed")
	}

	clock.advance(time.Second)
	if r := tracker.Check("42"); !r.Allowed {
		t.Error("key should be allowed after the cooldown")
	}
}

func TestBlockedEventsAreNotCounted(t *testing.T) {
	clock := newFakeClock()
	tracker := newTrackerWithClock(Config{Enabled: true, MaxEvents: 2, Window: time.Minute, RepeatCooldown: time.Minute}, clock.now)

	tracker.Check("a")
	for i := 0; i < 5; i++ {
		tracker.Check("a")
	}
	if r := tracker.Check("b"); !r.Allowed {
		t.Errorf("blocked repeats used up the limit: %s", r.Reason)
	}
}

func TestDisabled(t *testing.T) {
	tracker := NewTracker(Config{Enabled: false, MaxEvents: 1, Window: time.Hour, RepeatCooldown: time.Hour})

	for i := 0; i < 10; i++ {
		if r := tracker.Check("same"); !r.Allowed {
			t.Fatalf("disabled tracker blocked event %d", i+1)
		}
	}
}

func TestReset(t *testing.T) {
	tracker := NewTracker(Config{Enabled: true, MaxEvents: 1, Window: time.Hour, RepeatCooldown: time.Hour})

	tracker.Check("x")
	if tracker.Check("y").Allowed {
		t.Fatal("second event should be blocked")
	}
	tracker.Reset()
	if r := tracker.Check("x"); !r.Allowed {
		t.Errorf("Reset did not clear state: %s", r.Reason)
	}
}

func TestConcurrentChecks(t *testing.T) {
	tracker := NewTracker(Config{Enabled: true, MaxEvents: 50, Window: time.Hour})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if tracker.Check(fmt.Sprint(i)).Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed %d events, want 50", allowed)
	}
}
