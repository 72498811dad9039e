package boundary

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/hartylabs/housing-atlas/internal/faults"
	"github.com/hartylabs/housing-atlas/internal/fetcher"
	"github.com/hartylabs/housing-atlas/internal/model"
)

// GeoJSONSource fetches a nationwide county FeatureCollection and filters
// features whose FIPS code carries the configured state prefix.
type GeoJSONSource struct {
	f         fetcher.Fetcher
	url       string
	stateFIPS string
}

// NewGeoJSONSource creates a GeoJSON-backed boundary source.
func NewGeoJSONSource(f fetcher.Fetcher, url, stateFIPS string) *GeoJSONSource {
	return &GeoJSONSource{f: f, url: url, stateFIPS: stateFIPS}
}

// Name implements Source.
func (s *GeoJSONSource) Name() string { return "geojson" }

// Counties implements Source.
func (s *GeoJSONSource) Counties(ctx context.Context) ([]model.CountyBoundary, error) {
	log := zap.L().With(
		zap.String("component", "boundary.geojson"),
		zap.String("url", s.url),
	)
	log.Info("downloading county GeoJSON")

	body, err := s.f.Download(ctx, s.url)
	if err != nil {
		return nil, &faults.RequestError{Source: "boundary", Err: err}
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &faults.RequestError{Source: "boundary", Err: err}
	}

	counties, err := s.parse(data)
	if err != nil {
		return nil, err
	}

	log.Info("county GeoJSON loaded", zap.Int("counties", len(counties)))
	return counties, nil
}

// parse decodes the FeatureCollection and filters by state prefix.
func (s *GeoJSONSource) parse(data []byte) ([]model.CountyBoundary, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, &faults.FormatError{Err: eris.Wrap(err, "decode feature collection")}
	}

	var counties []model.CountyBoundary
	var skipped int

	for _, feat := range fc.Features {
		fips := featureFIPS(feat)
		if fips == "" || !strings.HasPrefix(fips, s.stateFIPS) {
			continue
		}

		mp := toMultiPolygon(feat.Geometry)
		if mp == nil {
			skipped++
			continue
		}

		counties = append(counties, model.CountyBoundary{
			FIPS:     fips,
			Name:     featureName(feat),
			Geometry: mp,
		})
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped non-polygonal features", zap.Int("skipped", skipped))
	}

	if len(counties) == 0 {
		return nil, &faults.FormatError{Err: eris.Errorf("no county features with FIPS prefix %s", s.stateFIPS)}
	}

	sort.Slice(counties, func(i, j int) bool { return counties[i].FIPS < counties[j].FIPS })
	return counties, nil
}

// featureFIPS resolves the 5-digit county code from a feature. Public
// county datasets vary: some carry it as the feature id, some as a GEO_ID
// property ("0500000US18001"), some as separate STATE and COUNTY codes.
func featureFIPS(feat *geojson.Feature) string {
	if len(feat.ID) == 5 {
		return feat.ID
	}
	if geoID, ok := feat.Properties["GEO_ID"].(string); ok {
		if i := strings.Index(geoID, "US"); i >= 0 && len(geoID) > i+2 {
			return geoID[i+2:]
		}
	}
	state, sok := feat.Properties["STATE"].(string)
	county, cok := feat.Properties["COUNTY"].(string)
	if sok && cok {
		return state + county
	}
	return ""
}

// featureName resolves the county display name, if present.
func featureName(feat *geojson.Feature) string {
	for _, key := range []string{"NAME", "name"} {
		if name, ok := feat.Properties[key].(string); ok {
			return name
		}
	}
	return ""
}

// toMultiPolygon normalizes a feature geometry to a MultiPolygon, promoting
// bare Polygons. Returns nil for any other geometry type.
func toMultiPolygon(g geom.T) *geom.MultiPolygon {
	switch t := g.(type) {
	case *geom.MultiPolygon:
		return t
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(geom.XY)
		mp.SetSRID(t.SRID())
		if err := mp.Push(t); err != nil {
			return nil
		}
		return mp
	default:
		return nil
	}
}
