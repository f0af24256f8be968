package service

import (
	"sync"
	"time"

	"jucity-ai/internal/session"
)

// DefaultBookingHintInterval is the minimum gap between booking hints sent to
// the same conversant.
const DefaultBookingHintInterval = 10 * time.Minute

// BookingHintLimiter rate-limits the booking hint per conversant. Anonymous
// requests (empty user id) are never hinted.
type BookingHintLimiter struct {
	mu       sync.Mutex
	last     map[string]time.Time
	interval time.Duration
	clock    session.Clock
}

// NewBookingHintLimiter creates a limiter on the given clock.
func NewBookingHintLimiter(interval time.Duration, clock session.Clock) *BookingHintLimiter {
	if clock == nil {
		clock = session.SystemClock{}
	}
	return &BookingHintLimiter{
		last:     make(map[string]time.Time),
		interval: interval,
		clock:    clock,
	}
}

// Allow reports whether a hint may be sent to the conversant now, and records
// the send when it may.
func (l *BookingHintLimiter) Allow(userID string) bool {
	if userID == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if last, ok := l.last[userID]; ok && now.Sub(last) < l.interval {
		return false
	}
	l.last[userID] = now
	return true
}
