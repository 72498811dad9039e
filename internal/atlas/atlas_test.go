package atlas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/hartylabs/housing-atlas/internal/faults"
	"github.com/hartylabs/housing-atlas/internal/model"
)

// square returns a unit-square MultiPolygon offset by dx.
func square(dx float64) *geom.MultiPolygon {
	mp := geom.NewMultiPolygon(geom.XY)
	mp.SetSRID(4326)
	ring := geom.NewLinearRingFlat(geom.XY, []float64{
		dx, 0, dx + 1, 0, dx + 1, 1, dx, 1, dx, 0,
	})
	poly := geom.NewPolygon(geom.XY)
	if err := poly.Push(ring); err != nil {
		panic(err)
	}
	if err := mp.Push(poly); err != nil {
		panic(err)
	}
	return mp
}

type stubStats struct {
	stats []model.CountyStats
	err   error
	calls int
}

func (s *stubStats) CountyStats(context.Context) ([]model.CountyStats, error) {
	s.calls++
	return s.stats, s.err
}

type stubBoundaries struct {
	bounds []model.CountyBoundary
	err    error
	calls  int
}

func (s *stubBoundaries) Counties(context.Context) ([]model.CountyBoundary, error) {
	s.calls++
	return s.bounds, s.err
}

func (s *stubBoundaries) Name() string { return "stub" }

func testStats() []model.CountyStats {
	return []model.CountyStats{
		{FIPS: "18001", Name: "Adams County, Indiana", RentalYield: 0.06, TaxBurden: 0.0085714},
		{FIPS: "18003", Name: "Allen County, Indiana", RentalYield: 0.0582857, TaxBurden: 0.008},
		{FIPS: "18005", Name: "Bartholomew County, Indiana", RentalYield: 0.055, TaxBurden: 0.0075},
	}
}

func testBounds() []model.CountyBoundary {
	return []model.CountyBoundary{
		{FIPS: "18001", Name: "Adams", Geometry: square(0)},
		{FIPS: "18003", Name: "Allen", Geometry: square(2)},
		{FIPS: "18999", Name: "Nowhere", Geometry: square(4)},
	}
}

func TestMerge_Intersection(t *testing.T) {
	merged := merge(testStats(), testBounds())

	// 18005 has no boundary, 18999 has no stats; both are dropped.
	require.Len(t, merged, 2)
	assert.Equal(t, "18001", merged[0].FIPS)
	assert.Equal(t, "18003", merged[1].FIPS)

	// Statistics name wins: it carries the state suffix.
	assert.Equal(t, "Adams County, Indiana", merged[0].Name)
	assert.Equal(t, 0.06, merged[0].RentalYield)
	assert.NotNil(t, merged[0].Geometry)
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, merge(nil, testBounds()))
	assert.Empty(t, merge(testStats(), nil))
}

func TestSnapshot(t *testing.T) {
	stats := &stubStats{stats: testStats()}
	bounds := &stubBoundaries{bounds: testBounds()}
	a := New(stats, bounds, nil)

	snap, err := a.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.False(t, snap.FetchedAt.IsZero())
	assert.Len(t, snap.Counties, 2)
}

func TestSnapshot_StatsError(t *testing.T) {
	stats := &stubStats{err: &faults.RequestError{Source: "acs", Err: errors.New("timeout")}}
	bounds := &stubBoundaries{bounds: testBounds()}
	a := New(stats, bounds, NewSnapshotCache(time.Minute))

	_, err := a.Snapshot(context.Background())
	require.Error(t, err)
	assert.True(t, faults.IsRequest(err))

	// The failed cycle must not leave anything cached: boundaries were
	// never fetched, and a retry should hit both sources again.
	assert.Equal(t, 0, bounds.calls)
	_, err = a.Snapshot(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, stats.calls)
}

func TestSnapshot_BoundaryError(t *testing.T) {
	stats := &stubStats{stats: testStats()}
	bounds := &stubBoundaries{err: &faults.FormatError{Err: errors.New("bad geometry")}}
	a := New(stats, bounds, nil)

	_, err := a.Snapshot(context.Background())
	require.Error(t, err)
	assert.True(t, faults.IsFormat(err))
}

func TestSnapshot_Cached(t *testing.T) {
	stats := &stubStats{stats: testStats()}
	bounds := &stubBoundaries{bounds: testBounds()}
	a := New(stats, bounds, NewSnapshotCache(time.Minute))

	first, err := a.Snapshot(context.Background())
	require.NoError(t, err)
	second, err := a.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, stats.calls)
	assert.Equal(t, 1, bounds.calls)

	a.Invalidate()
	third, err := a.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
	assert.Equal(t, 2, stats.calls)
}

func TestMetricSelection_DoesNotMutateRatios(t *testing.T) {
	stats := &stubStats{stats: testStats()}
	bounds := &stubBoundaries{bounds: testBounds()}
	a := New(stats, bounds, NewSnapshotCache(time.Minute))

	snap, err := a.Snapshot(context.Background())
	require.NoError(t, err)

	before := make([]model.CountyMetrics, len(snap.Counties))
	copy(before, snap.Counties)

	for _, m := range model.Metrics() {
		_, err := FeatureCollection(snap, m)
		require.NoError(t, err)
	}

	assert.Equal(t, before, snap.Counties)
}
