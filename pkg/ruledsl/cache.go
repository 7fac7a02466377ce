package ruledsl

import (
	"sync"
	"time"
)

// Cache memoizes Compile keyed by the exact rule text. Failed compilations
// are not cached.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	rule      *CompiledRule
	expiresAt time.Time
}

// NewCache returns a cache whose entries live for ttl. A ttl of zero keeps
// entries until Invalidate is called.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Compile returns the cached rule for dsl, compiling it on a miss. The bool
// reports whether the result came from the cache.
func (c *Cache) Compile(dsl string) (*CompiledRule, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[dsl]
	c.mu.RUnlock()
	if ok && !c.expired(entry) {
		return entry.rule, true, nil
	}

	rule, err := Compile(dsl)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.entries[dsl] = cacheEntry{rule: rule, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return rule, false, nil
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) expired(entry cacheEntry) bool {
	return c.ttl > 0 && !c.now().Before(entry.expiresAt)
}
