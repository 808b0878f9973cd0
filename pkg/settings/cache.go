package settings

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTTL bounds how stale a cached settings parse may be.
const DefaultTTL = 30 * time.Second

type cacheEntry struct {
	doc       *Document
	timestamp time.Time
}

// Cache is a time-bounded cache of parsed settings files keyed by file
// path. Entries older than the TTL are treated as absent and re-read from
// disk.
type Cache struct {
	ttl    time.Duration
	now    func() time.Time
	logger *logrus.Entry

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache creates a cache with the given TTL.
func NewCache(ttl time.Duration, logger *logrus.Entry) *Cache {
	return NewCacheWithClock(ttl, logger, time.Now)
}

// NewCacheWithClock creates a cache with an injected time source for tests.
func NewCacheWithClock(ttl time.Duration, logger *logrus.Entry, now func() time.Time) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     now,
		logger:  logger,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the settings document for a workspace folder, reading from
// disk when there is no fresh cached entry. Returns nil when the file does
// not exist or fails to parse; parse failures are logged, never raised.
func (c *Cache) Get(folder string) *Document {
	path := PathIn(folder)

	c.mu.Lock()
	if entry, ok := c.entries[path]; ok && c.now().Sub(entry.timestamp) < c.ttl {
		c.mu.Unlock()
		return entry.doc
	}
	c.mu.Unlock()

	doc, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.WithError(err).WithField("path", path).Warn("Failed to read settings file")
		}
		return nil
	}

	c.mu.Lock()
	c.entries[path] = cacheEntry{doc: doc, timestamp: c.now()}
	c.mu.Unlock()
	return doc
}

// Put refreshes the cache entry for a document just written by the syncer.
func (c *Cache) Put(doc *Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[doc.Path] = cacheEntry{doc: doc, timestamp: c.now()}
}

// Invalidate drops the entry for a settings file path. Called whenever the
// file is observed to change externally.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Clear drops every cached entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
