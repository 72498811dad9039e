package main

import (
	"github.com/rotisserie/eris"

	"github.com/hartylabs/housing-atlas/internal/acs"
	"github.com/hartylabs/housing-atlas/internal/atlas"
	"github.com/hartylabs/housing-atlas/internal/boundary"
	"github.com/hartylabs/housing-atlas/internal/config"
	"github.com/hartylabs/housing-atlas/internal/fetcher"
)

// buildAtlas wires the statistics client and the configured boundary
// strategy into an Atlas.
func buildAtlas(cfg *config.Config) (*atlas.Atlas, error) {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout(),
	})

	stats := acs.New(f, acs.Config{
		BaseURL:   cfg.ACS.BaseURL,
		Year:      cfg.ACS.Year,
		StateFIPS: cfg.ACS.StateFIPS,
		APIKey:    cfg.ACS.APIKey,
	})

	var src boundary.Source
	switch cfg.Boundary.Strategy {
	case "shapefile":
		src = boundary.NewShapefileSource(f, cfg.Boundary.ShapefileURL, cfg.ACS.StateFIPS, cfg.Boundary.TempDir)
	case "geojson":
		src = boundary.NewGeoJSONSource(f, cfg.Boundary.GeoJSONURL, cfg.ACS.StateFIPS)
	default:
		return nil, eris.Errorf("unknown boundary strategy %q", cfg.Boundary.Strategy)
	}

	return atlas.New(stats, src, atlas.NewSnapshotCache(cfg.Cache.TTL())), nil
}
