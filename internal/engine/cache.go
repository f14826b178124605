package engine

import (
	"sync"
	"time"

	"github.com/NordCoder/Streamwatch/internal/domain/stream"
)

type cacheEntry struct {
	status  stream.Status
	expires time.Time
}

// Cache maps target URL to the last probed status with a per-entry TTL.
// Expiry is evaluated on read; stale entries linger until overwritten,
// there is no background sweep to start or stop.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached status for key, or ok=false when the key is
// missing or its entry has expired.
func (c *Cache) Get(key string) (stream.Status, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		return stream.Status{}, false
	}
	return e.status, true
}

// Put stores st unconditionally, resetting expiry relative to call time.
func (c *Cache) Put(key string, st stream.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{status: st, expires: c.now().Add(c.ttl)}
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
