// Package ratelimit implements a per-client sliding-window request limiter.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter allows at most limit requests per client within window.
// Expired timestamps are swept on every call and clients with no recent
// requests are evicted, so memory tracks only active clients.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	clients map[string][]time.Time
}

// New creates a Limiter. A non-positive limit disables limiting.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string][]time.Time),
	}
}

// Allow reports whether client may make a request now and records it if so.
// Rejected requests are not recorded.
func (l *Limiter) Allow(client string) bool {
	if l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	if len(l.clients[client]) >= l.limit {
		return false
	}
	l.clients[client] = append(l.clients[client], now)
	return true
}

// Window returns the limiter period.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Clients returns the number of tracked clients.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *Limiter) sweep(now time.Time) {
	cutoff := now.Add(-l.window)
	for client, stamps := range l.clients {
		// stamps are appended in time order
		i := 0
		for i < len(stamps) && !stamps[i].After(cutoff) {
			i++
		}
		if i == len(stamps) {
			delete(l.clients, client)
			continue
		}
		if i > 0 {
			l.clients[client] = append(stamps[:0], stamps[i:]...)
		}
	}
}
