package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultWindow is the length of one rate-limit window.
	DefaultWindow = time.Minute
	// DefaultMaxRequests is the number of requests allowed per window.
	DefaultMaxRequests = 30
)

// entry holds the request count and reset deadline for one actor's window.
type entry struct {
	count   int
	resetAt time.Time
}

// Limiter is a per-actor fixed-window request counter.
type Limiter struct {
	mu      sync.Mutex
	entries map[int64]*entry

	window time.Duration
	max    int
	now    func() time.Time
}

// New creates a limiter with the given window and request maximum.
// Non-positive values fall back to the defaults.
func New(window time.Duration, max int) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMaxRequests
	}
	return &Limiter{
		entries: make(map[int64]*entry),
		window:  window,
		max:     max,
		now:     time.Now,
	}
}

// Allow records one request for the actor and reports whether it is within
// the window maximum. The counter is incremented even for rejected requests;
// the limiter does not account accepted and rejected traffic separately.
func (l *Limiter) Allow(actorID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[actorID]
	if !ok || now.After(e.resetAt) {
		l.entries[actorID] = &entry{count: 1, resetAt: now.Add(l.window)}
		return true
	}

	e.count++
	return e.count <= l.max
}
