// Package throttle tracks per-claimant redemption cooldowns.
//
// The tracker is advisory: it curbs repeat attempts in front of the
// authoritative conditional write, it does not enforce the at-most-once
// guarantee. The in-memory implementation scopes the cooldown to a single
// process; deployments running multiple replicas behind a load balancer
// should use the Redis-backed tracker so the window holds across replicas.
package throttle

import (
	"context"
	"sync"
	"time"
)

// Tracker records successful redemptions per claimant identity and answers
// whether an identity is still inside its cooldown window.
type Tracker interface {
	// Active reports whether identity recorded a redemption within the
	// cooldown window ending at now.
	Active(ctx context.Context, identity string, now time.Time) (bool, error)

	// Record marks a successful redemption by identity at now.
	Record(ctx context.Context, identity string, now time.Time) error
}

// MemoryTracker is a process-local Tracker backed by a mutex-guarded map.
type MemoryTracker struct {
	window time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

// NewMemoryTracker creates a MemoryTracker with the given cooldown window.
func NewMemoryTracker(window time.Duration) *MemoryTracker {
	return &MemoryTracker{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// Active implements Tracker. It never returns an error.
func (t *MemoryTracker) Active(_ context.Context, identity string, now time.Time) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	at, ok := t.last[identity]
	if !ok {
		return false, nil
	}
	if now.Sub(at) < t.window {
		return true, nil
	}
	// Stale entry, drop it so the map does not grow unbounded.
	delete(t.last, identity)
	return false, nil
}

// Record implements Tracker. It also prunes entries older than the window.
func (t *MemoryTracker) Record(_ context.Context, identity string, now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, at := range t.last {
		if now.Sub(at) >= t.window {
			delete(t.last, id)
		}
	}
	t.last[identity] = now
	return nil
}
