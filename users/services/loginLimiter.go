package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per client key (ip plus email).
// Idle limiters are dropped once they have refilled.
type LoginLimiter struct {
	mu       sync.Mutex
	every    time.Duration
	burst    int
	limiters map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter allows burst attempts, then one more per every.
func NewLoginLimiter(every time.Duration, burst int) *LoginLimiter {
	return &LoginLimiter{
		every:    every,
		burst:    burst,
		limiters: make(map[string]*limiterEntry),
	}
}

func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.sweep(now)

	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Reset forgets key, e.g. after a successful login.
func (l *LoginLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, key)
}

func (l *LoginLimiter) sweep(now time.Time) {
	idle := l.every * time.Duration(l.burst)
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > idle {
			delete(l.limiters, key)
		}
	}
}
