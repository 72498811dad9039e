// Package model holds the typed records exchanged between the statistics
// fetcher, the boundary source, and the presentation layer. Loosely-typed
// API responses are converted into these records at the boundary; everything
// inward of the fetchers works with validated values only.
package model

import (
	"time"

	"github.com/twpayne/go-geom"
)

// CountyStats is one county's housing statistics for a single ACS release,
// with the two derived ratios. Records are immutable once built.
type CountyStats struct {
	FIPS              string  // 5-digit state+county code
	Name              string  // display name, e.g. "Adams County, Indiana"
	MedianRent        float64 // B25064: median gross rent, USD/month
	MedianHomeValue   float64 // B25077: median home value, USD
	MedianPropertyTax float64 // B25092: median property taxes, USD/year
	RentalYield       float64 // (rent * 12) / home value
	TaxBurden         float64 // property tax / home value
}

// CountyBoundary is one county's polygon geometry in EPSG:4326.
type CountyBoundary struct {
	FIPS     string
	Name     string
	Geometry *geom.MultiPolygon
}

// CountyMetrics is the merged view of stats and boundary for one county.
type CountyMetrics struct {
	FIPS        string
	Name        string
	RentalYield float64
	TaxBurden   float64
	Geometry    *geom.MultiPolygon
}

// Snapshot is one complete fetch cycle: the merged county set plus
// provenance. Counties are sorted by FIPS.
type Snapshot struct {
	ID        string
	FetchedAt time.Time
	Counties  []CountyMetrics
}
