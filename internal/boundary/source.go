// Package boundary retrieves county polygon geometries and filters them to
// a single state. Two interchangeable strategies exist: a zipped Census
// cartographic-boundary shapefile and a public nationwide GeoJSON document.
package boundary

import (
	"context"

	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"

	"github.com/hartylabs/housing-atlas/internal/model"
)

// Source retrieves the county boundaries for the configured state.
type Source interface {
	// Counties fetches, decodes, and filters the boundary set. The result
	// is sorted by FIPS.
	Counties(ctx context.Context) ([]model.CountyBoundary, error)

	// Name identifies the strategy for logs and diagnostics.
	Name() string
}

// polygonToMultiPolygon converts a shapefile Polygon to a go-geom
// MultiPolygon in EPSG:4326. Returns nil when the shape has no usable
// rings.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	mp.SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			continue
		}
		if err := mp.Push(poly); err != nil {
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
