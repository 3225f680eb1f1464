// Package throttle limits how often a session may run expensive commands.
package throttle

import (
	"sync"
	"time"
)

// Config holds throttle settings
type Config struct {
	Enabled        bool          `yaml:"enabled"`
	MaxEvents      int           `yaml:"max_events"`      // Max events allowed in the window
	Window         time.Duration `yaml:"window"`          // Sliding window for MaxEvents
	RepeatCooldown time.Duration `yaml:"repeat_cooldown"` // How long before the same key is allowed again
}

// DefaultConfig returns the defaults used for house regeneration
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		MaxEvents:      5,
		Window:         30 * time.Second,
		RepeatCooldown: 10 * time.Second,
	}
}

// Result is the outcome of a Check
type Result struct {
	Allowed bool
	Reason  string
	Wait    time.Duration // How long until a retry can succeed (if not allowed)
}

// Tracker tracks events for a single session
type Tracker struct {
	mu       sync.Mutex
	config   Config
	now      func() time.Time
	times    []time.Time          // Timestamps of recent events
	lastKeys map[string]time.Time // key -> last allowed time
}

// NewTracker creates a tracker with the given config
func NewTracker(config Config) *Tracker {
	return newTrackerWithClock(config, time.Now)
}

func newTrackerWithClock(config Config, now func() time.Time) *Tracker {
	return &Tracker{
		config:   config,
		now:      now,
		times:    make([]time.Time, 0, config.MaxEvents),
		lastKeys: make(map[string]time.Time),
	}
}

// Check records an event and reports whether it is allowed. An empty key
// skips the repeat check.
func (t *Tracker) Check(key string) Result {
	if !t.config.Enabled {
		return Result{Allowed: true}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.cleanup(now)

	if key != "" {
		if last, ok := t.lastKeys[key]; ok {
			if elapsed := now.Sub(last); elapsed < t.config.RepeatCooldown {
				return Result{
					Reason: "that house was just generated",
					Wait:   t.config.RepeatCooldown - elapsed,
				}
			}
		}
	}

	if t.config.MaxEvents > 0 && len(t.times) >= t.config.MaxEvents {
		return Result{
			Reason: "too many requests, slow down",
			Wait:   t.times[0].Add(t.config.Window).Sub(now),
		}
	}

	t.times = append(t.times, now)
	if key != "" {
		t.lastKeys[key] = now
	}
	return Result{Allowed: true}
}

// cleanup drops entries that no longer count against the limits
func (t *Tracker) cleanup(now time.Time) {
	cutoff := now.Add(-t.config.Window)
	kept := t.times[:0]
	for _, at := range t.times {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	t.times = kept

	repeatCutoff := now.Add(-t.config.RepeatCooldown)
	for key, at := range t.lastKeys {
		if !at.After(repeatCutoff) {
			delete(t.lastKeys, key)
		}
	}
}

// Reset clears all tracking data
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.times = t.times[:0]
	t.lastKeys = make(map[string]time.Time)
}
