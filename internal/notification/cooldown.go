package notification

import (
	"sync"
	"time"
)

// CooldownManager rate-limits notifications per key to prevent spam
type CooldownManager struct {
	duration time.Duration
	last     map[string]time.Time
	now      func() time.Time
	mu       sync.Mutex
}

// NewCooldownManager creates a new cooldown manager
func NewCooldownManager(duration time.Duration) *CooldownManager {
	return &CooldownManager{
		duration: duration,
		last:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow reports whether a notification for key may be sent now and, if so,
// records it
func (c *CooldownManager) Allow(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if last, ok := c.last[key]; ok && now.Sub(last) < c.duration {
		return false
	}
	c.last[key] = now
	return true
}

// Reset clears every recorded notification
func (c *CooldownManager) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = make(map[string]time.Time)
}
