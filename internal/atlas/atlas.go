// Package atlas orchestrates one render cycle: fetch statistics, fetch
// boundaries, join on FIPS, and expose the merged view as GeoJSON, CSV,
// and XLSX. A snapshot is the explicit render context threaded through
// the presentation layer.
package atlas

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hartylabs/housing-atlas/internal/boundary"
	"github.com/hartylabs/housing-atlas/internal/model"
)

// StatsFetcher is the statistics side of a snapshot. Implemented by
// acs.Client.
type StatsFetcher interface {
	CountyStats(ctx context.Context) ([]model.CountyStats, error)
}

// Atlas builds merged snapshots from the two data sources.
type Atlas struct {
	stats      StatsFetcher
	boundaries boundary.Source
	cache      *SnapshotCache
}

// New creates an Atlas. cache may be nil to disable caching.
func New(stats StatsFetcher, boundaries boundary.Source, cache *SnapshotCache) *Atlas {
	return &Atlas{stats: stats, boundaries: boundaries, cache: cache}
}

// Snapshot returns the current merged view, fetching both sources
// sequentially if the cache has no live entry. Errors are never cached;
// a failed cycle leaves the previous entry untouched only if it is still
// within its TTL.
func (a *Atlas) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	if a.cache != nil {
		if snap := a.cache.Get(); snap != nil {
			return snap, nil
		}
	}

	log := zap.L().With(zap.String("component", "atlas"))
	start := time.Now()

	stats, err := a.stats.CountyStats(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "atlas: fetch statistics")
	}

	bounds, err := a.boundaries.Counties(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "atlas: fetch boundaries")
	}

	snap := &model.Snapshot{
		ID:        uuid.NewString(),
		FetchedAt: time.Now().UTC(),
		Counties:  merge(stats, bounds),
	}

	log.Info("snapshot built",
		zap.String("snapshot_id", snap.ID),
		zap.String("boundary_source", a.boundaries.Name()),
		zap.Int("stats_counties", len(stats)),
		zap.Int("boundary_counties", len(bounds)),
		zap.Int("merged_counties", len(snap.Counties)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if a.cache != nil {
		a.cache.Put(snap)
	}
	return snap, nil
}

// Invalidate drops any cached snapshot so the next request re-fetches.
func (a *Atlas) Invalidate() {
	if a.cache != nil {
		a.cache.Invalidate()
	}
}

// CacheStats reports cache performance, or a zero value when caching is
// disabled.
func (a *Atlas) CacheStats() CacheStats {
	if a.cache == nil {
		return CacheStats{}
	}
	return a.cache.Stats()
}

// merge inner-joins stats and boundaries on FIPS. Counties present in only
// one source are silently dropped: the merged key set is exactly the
// intersection of the two source key sets. The statistics name wins when
// both sources carry one, since it includes the state suffix.
func merge(stats []model.CountyStats, bounds []model.CountyBoundary) []model.CountyMetrics {
	byFIPS := make(map[string]model.CountyStats, len(stats))
	for _, s := range stats {
		byFIPS[s.FIPS] = s
	}

	merged := make([]model.CountyMetrics, 0, len(bounds))
	for _, b := range bounds {
		s, ok := byFIPS[b.FIPS]
		if !ok {
			continue
		}
		name := s.Name
		if name == "" {
			name = b.Name
		}
		merged = append(merged, model.CountyMetrics{
			FIPS:        b.FIPS,
			Name:        name,
			RentalYield: s.RentalYield,
			TaxBurden:   s.TaxBurden,
			Geometry:    b.Geometry,
		})
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].FIPS < merged[j].FIPS })
	return merged
}
