package atlas

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hartylabs/housing-atlas/internal/model"
)

// SnapshotCache holds the most recent snapshot for a fixed query. The
// query parameters never vary at runtime, so a single TTL-expiring entry
// replaces the framework-level memoization the original design leaned on.
type SnapshotCache struct {
	mu       sync.RWMutex
	entry    *model.Snapshot
	storedAt time.Time
	ttl      time.Duration
	hits     atomic.Int64
	misses   atomic.Int64
	clock    func() time.Time
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Cached   bool      `json:"cached"`
	StoredAt time.Time `json:"stored_at,omitzero"`
	TTL      string    `json:"ttl"`
	Hits     int64     `json:"hits"`
	Misses   int64     `json:"misses"`
}

// NewSnapshotCache creates a cache with the given TTL.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{ttl: ttl, clock: time.Now}
}

// Get returns the cached snapshot, or nil on miss or expiry.
func (c *SnapshotCache) Get() *model.Snapshot {
	c.mu.RLock()
	entry, storedAt := c.entry, c.storedAt
	c.mu.RUnlock()

	if entry == nil || c.clock().Sub(storedAt) > c.ttl {
		c.misses.Add(1)
		return nil
	}
	c.hits.Add(1)
	return entry
}

// Put stores a snapshot, replacing any previous entry.
func (c *SnapshotCache) Put(snap *model.Snapshot) {
	c.mu.Lock()
	c.entry = snap
	c.storedAt = c.clock()
	c.mu.Unlock()
}

// Invalidate drops the cached entry immediately.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}

// Stats returns cache performance statistics.
func (c *SnapshotCache) Stats() CacheStats {
	c.mu.RLock()
	entry, storedAt := c.entry, c.storedAt
	c.mu.RUnlock()

	stats := CacheStats{
		TTL:    c.ttl.String(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
	if entry != nil && c.clock().Sub(storedAt) <= c.ttl {
		stats.Cached = true
		stats.StoredAt = storedAt
	}
	return stats
}
