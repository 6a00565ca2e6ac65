package loc

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/gleyba/uber-poet/filegen"
)

type cacheKey struct {
	lang filegen.Language
	hash uint64
}

// MeasurementCache remembers counted line totals by language and text hash.
// Safe for concurrent use.
type MeasurementCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]int
}

// NewMeasurementCache creates an empty cache
func NewMeasurementCache() *MeasurementCache {
	return &MeasurementCache{entries: make(map[cacheKey]int)}
}

func keyFor(lang filegen.Language, text string) cacheKey {
	return cacheKey{lang: lang, hash: xxhash.Sum64String(text)}
}

// Get returns the cached count for text
func (c *MeasurementCache) Get(lang filegen.Language, text string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.entries[keyFor(lang, text)]
	return n, ok
}

// Put stores the count for text
func (c *MeasurementCache) Put(lang filegen.Language, text string, loc int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[keyFor(lang, text)] = loc
}

// Len is the number of cached measurements
func (c *MeasurementCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
