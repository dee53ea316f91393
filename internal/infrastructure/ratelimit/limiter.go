package ratelimit

import (
	"sync"
	"time"

	"github.com/homeplate/backend/internal/domain"
)

// window tracks one client's counter within the current fixed window.
type window struct {
	count   int
	startAt time.Time
}

// FixedWindow is an in-memory fixed-window rate limiter keyed by client
// id. It is best-effort throttling: state does not survive a restart and
// is not shared across instances.
type FixedWindow struct {
	mu       sync.Mutex
	clients  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time
}

// NewFixedWindow creates a limiter allowing limit calls per duration per
// client id.
func NewFixedWindow(limit int, duration time.Duration) *FixedWindow {
	if limit <= 0 {
		limit = 5
	}
	if duration <= 0 {
		duration = time.Hour
	}
	return &FixedWindow{
		clients:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Check consumes one slot for clientID and reports whether the call is
// allowed. The window resets once duration has elapsed since the first
// request in it. Check-and-consume: call exactly once per attempted
// operation.
func (l *FixedWindow) Check(clientID string) domain.RateLimitDecision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, exists := l.clients[clientID]
	if !exists || now.Sub(w.startAt) >= l.duration {
		w = &window{startAt: now}
		l.clients[clientID] = w
	}

	resetAt := w.startAt.Add(l.duration)

	if w.count >= l.limit {
		return domain.RateLimitDecision{Allowed: false, Remaining: 0, ResetAt: resetAt}
	}

	w.count++
	return domain.RateLimitDecision{
		Allowed:   true,
		Remaining: l.limit - w.count,
		ResetAt:   resetAt,
	}
}

// SetClock overrides the limiter's clock. Test use only.
func (l *FixedWindow) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
