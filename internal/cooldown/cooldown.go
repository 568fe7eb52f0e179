// Package cooldown provides a keyed expiring cache used to throttle repeated
// notifications. Eviction is explicit (on probe) and the clock is injectable,
// so behaviour is deterministic under test.
package cooldown

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Tracker remembers, per key, until when further hits should be suppressed.
type Tracker struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	ttl     time.Duration
	expires map[string]time.Time
}

// New creates a Tracker with the given suppression window.
func New(ttl time.Duration, clock clockwork.Clock) *Tracker {
	return &Tracker{
		clock:   clock,
		ttl:     ttl,
		expires: make(map[string]time.Time),
	}
}

// Allow reports whether the key is currently outside its cooldown window and,
// if so, starts a new window. Expired entries are evicted as they are probed.
func (t *Tracker) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if until, ok := t.expires[key]; ok {
		if now.Before(until) {
			return false
		}
		delete(t.expires, key)
	}
	t.expires[key] = now.Add(t.ttl)
	return true
}

// Forget clears the cooldown for a key.
func (t *Tracker) Forget(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.expires, key)
}

// Len returns the number of live entries, evicting expired ones first.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	for k, until := range t.expires {
		if !now.Before(until) {
			delete(t.expires, k)
		}
	}
	return len(t.expires)
}
