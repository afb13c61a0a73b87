// Package rate throttles ticket submissions per listero so a runaway
// client cannot flood the validation path.
package rate

import (
	"sync"
	"time"
)

// Config defines the token-bucket parameters applied to each listero.
type Config struct {
	SubmitsPerSecond float64
	Burst            int
}

// Limiter is a token bucket for a single listero.
type Limiter struct {
	mu     sync.Mutex
	tokens float64
	last   time.Time
	rate   float64
	burst  float64
}

func newLimiter(cfg Config) *Limiter {
	return &Limiter{
		tokens: float64(cfg.Burst),
		last:   time.Now(),
		rate:   cfg.SubmitsPerSecond,
		burst:  float64(cfg.Burst),
	}
}

// Allow consumes one token if available.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	l.last = now
	if l.tokens > l.burst {
		l.tokens = l.burst
	}

	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// Manager holds one limiter per listero, created lazily.
type Manager struct {
	mu       sync.RWMutex
	limiters map[string]*Limiter
	defaults Config
}

func NewManager(defaults Config) *Manager {
	return &Manager{
		limiters: make(map[string]*Limiter),
		defaults: defaults,
	}
}

// Allow reports whether the given listero may submit now.
func (m *Manager) Allow(listeroID string) bool {
	m.mu.RLock()
	lim, ok := m.limiters[listeroID]
	m.mu.RUnlock()
	if ok {
		return lim.Allow()
	}

	m.mu.Lock()
	lim, ok = m.limiters[listeroID]
	if !ok {
		lim = newLimiter(m.defaults)
		m.limiters[listeroID] = lim
	}
	m.mu.Unlock()
	return lim.Allow()
}
