package atlas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hartylabs/housing-atlas/internal/model"
)

func TestSnapshotCache_HitWithinTTL(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := NewSnapshotCache(15 * time.Minute)
	c.clock = func() time.Time { return now }

	assert.Nil(t, c.Get())

	snap := &model.Snapshot{ID: "snap-1"}
	c.Put(snap)

	now = now.Add(14 * time.Minute)
	got := c.Get()
	require.NotNil(t, got)
	assert.Equal(t, "snap-1", got.ID)
}

func TestSnapshotCache_ExpiresAfterTTL(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := NewSnapshotCache(15 * time.Minute)
	c.clock = func() time.Time { return now }

	c.Put(&model.Snapshot{ID: "snap-1"})

	now = now.Add(16 * time.Minute)
	assert.Nil(t, c.Get())
}

func TestSnapshotCache_Invalidate(t *testing.T) {
	c := NewSnapshotCache(time.Hour)
	c.Put(&model.Snapshot{ID: "snap-1"})
	require.NotNil(t, c.Get())

	c.Invalidate()
	assert.Nil(t, c.Get())
}

func TestSnapshotCache_Stats(t *testing.T) {
	now := time.Unix(1700000000, 0)
	c := NewSnapshotCache(15 * time.Minute)
	c.clock = func() time.Time { return now }

	c.Get() // miss
	c.Put(&model.Snapshot{ID: "snap-1"})
	c.Get() // hit
	c.Get() // hit

	stats := c.Stats()
	assert.True(t, stats.Cached)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, "15m0s", stats.TTL)

	now = now.Add(time.Hour)
	assert.False(t, c.Stats().Cached)
}
