package standard

import (
	"sync"
	"time"
)

// Cache holds standard sets keyed by unit code with a fixed TTL.
// It is owned by the caller and passed into the pipeline explicitly.
type Cache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry

	// now is overridable for tests.
	now func() time.Time
}

type cacheEntry struct {
	set     *Set
	expires time.Time
}

// NewCache creates a cache with the given entry lifetime.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached set for a unit code, or false if absent or expired.
// Expired entries are removed lazily.
func (c *Cache) Get(code string) (*Set, bool) {
	c.mu.RLock()
	entry, ok := c.entries[code]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().After(entry.expires) {
		c.Invalidate(code)
		return nil, false
	}

	return entry.set, true
}

// Put stores a set under its unit code, resetting the TTL.
func (c *Cache) Put(set *Set) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[set.Code] = cacheEntry{
		set:     set,
		expires: c.now().Add(c.ttl),
	}
}

// Invalidate removes a single entry.
func (c *Cache) Invalidate(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, code)
}

// PurgeExpired removes all expired entries and returns how many were dropped.
func (c *Cache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	dropped := 0
	for code, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, code)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of entries, including any not yet purged.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
