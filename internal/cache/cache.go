// Package cache provides the in-memory TTL cache for resolved work-week
// configs. It sits behind a small interface so the calculation and service
// layers never depend on how or where configs are cached.
package cache

import (
	"sync"
	"time"

	"github.com/julianstephens/weeklog/internal/models"
)

// ConfigCache caches resolved work-week configs keyed by scope.
type ConfigCache interface {
	Get(scope string) (models.WorkWeekConfig, bool)
	Set(scope string, cfg models.WorkWeekConfig)
	Invalidate(scope string)
}

type entry struct {
	cfg       models.WorkWeekConfig
	expiresAt time.Time
}

// TTLCache is a map-backed ConfigCache whose entries expire after a fixed
// duration. Expired entries are dropped lazily on the next Get.
type TTLCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

// NewTTLCache creates a TTLCache with the given entry lifetime.
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

func (c *TTLCache) Get(scope string) (models.WorkWeekConfig, bool) {
	c.mu.RLock()
	e, ok := c.entries[scope]
	c.mu.RUnlock()

	if !ok {
		return models.WorkWeekConfig{}, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a Set may have raced the expiry
		if e2, ok := c.entries[scope]; ok && time.Now().After(e2.expiresAt) {
			delete(c.entries, scope)
		}
		c.mu.Unlock()
		return models.WorkWeekConfig{}, false
	}
	return e.cfg, true
}

func (c *TTLCache) Set(scope string, cfg models.WorkWeekConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[scope] = entry{
		cfg:       cfg,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *TTLCache) Invalidate(scope string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, scope)
}
