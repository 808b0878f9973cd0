package config

import (
	"sync"
	"time"
)

// CacheTTL bounds how long a loaded configuration is memoized. This is
// deliberately longer than the settings-file cache TTL: tunables change
// rarely.
const CacheTTL = 60 * time.Second

// Cache memoizes configuration loads. It is invalidated wholesale whenever
// the config file itself is observed to change.
type Cache struct {
	load func() (*Config, error)
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	cfg      *Config
	loadedAt time.Time
}

// NewCache creates a config cache over the given loader.
func NewCache(load func() (*Config, error), ttl time.Duration) *Cache {
	return &Cache{load: load, ttl: ttl, now: time.Now}
}

// NewCacheWithClock creates a config cache with an injected time source.
func NewCacheWithClock(load func() (*Config, error), ttl time.Duration, now func() time.Time) *Cache {
	return &Cache{load: load, ttl: ttl, now: now}
}

// Get returns the cached configuration, reloading when the entry has
// expired. Load failures are returned but never cached.
func (c *Cache) Get() (*Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg != nil && c.now().Sub(c.loadedAt) < c.ttl {
		return c.cfg, nil
	}

	cfg, err := c.load()
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.loadedAt = c.now()
	return cfg, nil
}

// Invalidate drops the memoized configuration.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = nil
}
