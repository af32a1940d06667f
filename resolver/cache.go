package resolver

import "sync"

// CacheEntry is the terminal outcome recorded for a candidate URL.
type CacheEntry struct {
	Valid        bool
	CanonicalURL string
	Kind         OutcomeKind // Which outcome variant to replay on a hit
	StatusCode   int
}

// LinkCache memoizes resolution outcomes for the lifetime of one run.
// The first entry recorded for a URL is authoritative; later writes are
// ignored.
type LinkCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	hits    int
	misses  int
}

// NewLinkCache creates an empty cache.
func NewLinkCache() *LinkCache {
	return &LinkCache{entries: make(map[string]CacheEntry)}
}

// Lookup returns the recorded entry for url.
func (c *LinkCache) Lookup(url string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[url]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return entry, ok
}

// peek reads an entry without touching the hit and miss counters.
func (c *LinkCache) peek(url string) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[url]
	return entry, ok
}

// Record stores entry for url unless an entry already exists.
// It reports whether the entry was stored.
func (c *LinkCache) Record(url string, entry CacheEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[url]; exists {
		return false
	}
	c.entries[url] = entry
	return true
}

// Len returns the number of recorded URLs.
func (c *LinkCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns lookup hit and miss counts.
func (c *LinkCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
