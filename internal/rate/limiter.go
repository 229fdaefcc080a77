// Package rate provides a fixed-window request limiter keyed by caller,
// used to cap generation requests per subject.
package rate

import (
	"sync"
	"time"
)

// WindowLimiter allows up to limit calls per key within a window.
type WindowLimiter struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	entries     map[string]*entry
	lastCleanup time.Time

	// now is the clock, injectable for tests.
	now func() time.Time
}

type entry struct {
	start time.Time
	count int
}

// NewWindowLimiter creates a limiter.
func NewWindowLimiter(limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		limit:       limit,
		window:      window,
		entries:     make(map[string]*entry),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow records a call for key and reports whether it fits the window.
func (l *WindowLimiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeCleanup(now)

	e, ok := l.entries[key]
	if !ok {
		l.entries[key] = &entry{start: now, count: 1}
		return true
	}

	if now.Sub(e.start) >= l.window {
		e.start = now
		e.count = 1
		return true
	}

	if e.count >= l.limit {
		return false
	}
	e.count++
	return true
}

// maybeCleanup drops expired entries at most once per window.
func (l *WindowLimiter) maybeCleanup(now time.Time) {
	if l.window <= 0 || now.Sub(l.lastCleanup) < l.window {
		return
	}
	for key, e := range l.entries {
		if now.Sub(e.start) >= l.window {
			delete(l.entries, key)
		}
	}
	l.lastCleanup = now
}
