// internal/letter/cache.go
//
// In-memory cache of generated letters keyed by game id.
// Entries expire after a fixed TTL; expiry is checked lazily on read so no
// background sweeper is needed. Repeated requests for the same finished game
// return byte-identical text while the entry is fresh.

package letter

import (
	"sync"
	"time"
)

// CacheTTL is how long a generated letter stays retrievable by game id.
const CacheTTL = time.Hour

type cacheEntry struct {
	text      string
	expiresAt time.Time
}

// Cache is a concurrency-safe letter cache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time // injectable clock for tests
}

// NewCache constructs an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry), now: time.Now}
}

// Get returns the cached letter for the game id, if present and fresh.
func (c *Cache) Get(gameID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[gameID]
	if !ok {
		return "", false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, gameID)
		return "", false
	}
	return e.text, true
}

// Set stores a letter with the default TTL.
func (c *Cache) Set(gameID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[gameID] = cacheEntry{text: text, expiresAt: c.now().Add(CacheTTL)}
}
