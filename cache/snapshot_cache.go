package cache

import (
	"sync"
	"time"

	"weather-client/models"
)

// SnapshotCache holds the snapshot of the most recent successful query.
// Entries are never expired; a new snapshot replaces the old one wholesale.
type SnapshotCache struct {
	entry          *cacheEntry
	mutex          sync.RWMutex
	cacheHitCount  int
	cacheMissCount int
}

// cacheEntry represents the cached snapshot with the time it was stored
type cacheEntry struct {
	Data      models.Snapshot
	Timestamp time.Time
}

// NewSnapshotCache creates an empty cache
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{}
}

// Get returns the cached snapshot, if any, and counts the lookup
func (c *SnapshotCache) Get() (models.Snapshot, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.entry == nil {
		c.cacheMissCount++
		return models.Snapshot{}, false
	}
	c.cacheHitCount++
	return c.entry.Data, true
}

// Set replaces the cached snapshot
func (c *SnapshotCache) Set(snap models.Snapshot) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entry = &cacheEntry{
		Data:      snap,
		Timestamp: time.Now(),
	}
}

// Age returns how long ago the snapshot was stored
func (c *SnapshotCache) Age() (time.Duration, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.entry == nil {
		return 0, false
	}
	return time.Since(c.entry.Timestamp), true
}

// CacheStats returns statistics about cache hits and misses
func (c *SnapshotCache) CacheStats() (hits, misses int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.cacheHitCount, c.cacheMissCount
}
