package boundary

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hartylabs/housing-atlas/internal/faults"
	"github.com/hartylabs/housing-atlas/internal/fetcher"
	"github.com/hartylabs/housing-atlas/internal/model"
)

// ShapefileSource downloads a zipped Census cartographic-boundary county
// shapefile and filters it on STATEFP.
type ShapefileSource struct {
	f         fetcher.Fetcher
	url       string
	stateFIPS string
	tempDir   string
}

// NewShapefileSource creates a shapefile-backed boundary source.
func NewShapefileSource(f fetcher.Fetcher, url, stateFIPS, tempDir string) *ShapefileSource {
	return &ShapefileSource{f: f, url: url, stateFIPS: stateFIPS, tempDir: tempDir}
}

// Name implements Source.
func (s *ShapefileSource) Name() string { return "shapefile" }

// Counties implements Source. The ZIP is downloaded fresh each call; the
// snapshot cache above this layer decides how often that actually happens.
func (s *ShapefileSource) Counties(ctx context.Context) ([]model.CountyBoundary, error) {
	log := zap.L().With(
		zap.String("component", "boundary.shapefile"),
		zap.String("url", s.url),
	)

	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "boundary: create temp dir")
	}

	parts := strings.Split(s.url, "/")
	zipName := parts[len(parts)-1]
	zipPath := filepath.Join(s.tempDir, zipName)

	log.Info("downloading county shapefile")
	if _, err := s.f.DownloadToFile(ctx, s.url, zipPath); err != nil {
		return nil, &faults.RequestError{Source: "boundary", Err: err}
	}

	extractDir := filepath.Join(s.tempDir, strings.TrimSuffix(zipName, ".zip"))
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "boundary: create extract dir")
	}
	if err := extractZIP(zipPath, extractDir); err != nil {
		return nil, &faults.FormatError{Err: err}
	}

	shpPath, err := findFileByExt(extractDir, ".shp")
	if err != nil {
		return nil, &faults.FormatError{Err: err}
	}

	counties, err := s.parse(shpPath)
	if err != nil {
		return nil, err
	}

	log.Info("county shapefile loaded", zap.Int("counties", len(counties)))
	return counties, nil
}

// parse reads the extracted shapefile and converts matching records.
func (s *ShapefileSource) parse(shpPath string) ([]model.CountyBoundary, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, &faults.FormatError{Err: eris.Wrapf(err, "open shapefile %s", shpPath)}
	}
	defer func() { _ = reader.Close() }()

	stateIdx := fieldIndex(reader, "STATEFP")
	countyIdx := fieldIndex(reader, "COUNTYFP")
	nameIdx := fieldIndex(reader, "NAME")
	if stateIdx < 0 || countyIdx < 0 || nameIdx < 0 {
		return nil, &faults.FormatError{Err: eris.New("required shapefile fields (STATEFP, COUNTYFP, NAME) not found")}
	}

	var counties []model.CountyBoundary
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		stateFP := strings.TrimSpace(reader.Attribute(stateIdx))
		if stateFP != s.stateFIPS {
			continue
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}

		countyFP := strings.TrimSpace(reader.Attribute(countyIdx))
		counties = append(counties, model.CountyBoundary{
			FIPS:     stateFP + countyFP,
			Name:     strings.TrimSpace(reader.Attribute(nameIdx)),
			Geometry: mp,
		})
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped shapefile records", zap.Int("skipped", skipped))
	}

	sort.Slice(counties, func(i, j int) bool { return counties[i].FIPS < counties[j].FIPS })
	return counties, nil
}

// extractZIP extracts a ZIP archive to the destination directory.
func extractZIP(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "open zip")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		name := filepath.Base(f.Name)
		destPath := filepath.Join(destDir, name)

		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "open zip entry %s", f.Name)
		}

		outFile, err := os.Create(destPath)
		if err != nil {
			_ = rc.Close()
			return eris.Wrapf(err, "create %s", destPath)
		}

		if _, err := io.Copy(outFile, rc); err != nil {
			_ = outFile.Close()
			_ = rc.Close()
			return eris.Wrapf(err, "extract %s", f.Name)
		}
		_ = outFile.Close()
		_ = rc.Close()
	}

	return nil
}

// findFileByExt finds the first file with the given extension in a directory.
func findFileByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "read directory")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("no %s file found in %s", ext, dir)
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
