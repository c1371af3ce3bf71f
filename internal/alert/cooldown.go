package alert

import (
	"sync"
	"time"
)

// Cooldown decides whether a notification for a (component, title) pair may
// fire now or must be suppressed. The window is anchored to the last allowed
// fire: suppressed attempts do not push it out. Entries are never removed;
// the key space is bounded by the fixed set of issue kinds the monitors emit.
type Cooldown struct {
	enabled   bool
	window    time.Duration
	mutex     sync.Mutex
	lastFired map[string]time.Time
}

func NewCooldown(enabled bool, window time.Duration) *Cooldown {
	return &Cooldown{
		enabled:   enabled,
		window:    window,
		lastFired: make(map[string]time.Time),
	}
}

// Allow reports whether an alert for the pair may notify now, recording the
// fire time when it does. Always false when alerting is disabled.
func (c *Cooldown) Allow(component, title string) bool {
	if !c.enabled {
		return false
	}

	key := component + ":" + title
	now := time.Now()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if last, ok := c.lastFired[key]; ok && now.Sub(last) < c.window {
		return false
	}

	c.lastFired[key] = now
	return true
}
