package boundary

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hartylabs/housing-atlas/internal/faults"
	"github.com/hartylabs/housing-atlas/internal/fetcher"
)

type countyFixture struct {
	stateFP  string
	countyFP string
	name     string
	dx       float64
}

// writeCountyZip builds a minimal county shapefile and returns it zipped,
// the same bundle layout the Census cartographic-boundary downloads use.
func writeCountyZip(t *testing.T, counties []countyFixture) []byte {
	t.Helper()

	dir := t.TempDir()
	shpPath := filepath.Join(dir, "cb_test_county.shp")

	w, err := shp.Create(shpPath, shp.POLYGON)
	require.NoError(t, err)

	w.SetFields([]shp.Field{
		shp.StringField("STATEFP", 2),
		shp.StringField("COUNTYFP", 3),
		shp.StringField("NAME", 40),
	})

	for row, c := range counties {
		ring := []shp.Point{
			{X: c.dx, Y: 0}, {X: c.dx + 1, Y: 0},
			{X: c.dx + 1, Y: 1}, {X: c.dx, Y: 1},
			{X: c.dx, Y: 0},
		}
		w.Write((*shp.Polygon)(shp.NewPolyLine([][]shp.Point{ring})))
		w.WriteAttribute(row, 0, c.stateFP)
		w.WriteAttribute(row, 1, c.countyFP)
		w.WriteAttribute(row, 2, c.name)
	}
	w.Close()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		path := filepath.Join(dir, "cb_test_county"+ext)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		f, err := zw.Create("cb_test_county" + ext)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func serveZip(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = io.Copy(w, bytes.NewReader(payload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newShapefileFetcher() fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 5 * time.Second})
}

func TestShapefileSource_Counties(t *testing.T) {
	payload := writeCountyZip(t, []countyFixture{
		{stateFP: "18", countyFP: "003", name: "Allen", dx: 2},
		{stateFP: "18", countyFP: "001", name: "Adams", dx: 0},
		{stateFP: "39", countyFP: "001", name: "Adams", dx: 4},
	})
	srv := serveZip(t, payload)

	src := NewShapefileSource(newShapefileFetcher(), srv.URL+"/cb_test_county.zip", "18", t.TempDir())
	counties, err := src.Counties(context.Background())
	require.NoError(t, err)

	// The Ohio record is filtered out; survivors are sorted by FIPS.
	require.Len(t, counties, 2)
	assert.Equal(t, "18001", counties[0].FIPS)
	assert.Equal(t, "Adams", counties[0].Name)
	assert.Equal(t, "18003", counties[1].FIPS)
	assert.Equal(t, "Allen", counties[1].Name)

	require.NotNil(t, counties[0].Geometry)
	assert.Equal(t, 1, counties[0].Geometry.NumPolygons())
	assert.Equal(t, 4326, counties[0].Geometry.SRID())
}

func TestShapefileSource_NotAZip(t *testing.T) {
	srv := serveZip(t, []byte("this is not a zip archive"))

	src := NewShapefileSource(newShapefileFetcher(), srv.URL+"/bad.zip", "18", t.TempDir())
	_, err := src.Counties(context.Background())
	require.Error(t, err)
	assert.True(t, faults.IsFormat(err))
}

func TestShapefileSource_ZipWithoutShapefile(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("readme.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("no shapes here"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	srv := serveZip(t, buf.Bytes())

	src := NewShapefileSource(newShapefileFetcher(), srv.URL+"/empty.zip", "18", t.TempDir())
	_, err = src.Counties(context.Background())
	require.Error(t, err)
	assert.True(t, faults.IsFormat(err))
}

func TestShapefileSource_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewShapefileSource(newShapefileFetcher(), srv.URL+"/missing.zip", "18", t.TempDir())
	_, err := src.Counties(context.Background())
	require.Error(t, err)
	assert.True(t, faults.IsRequest(err))
}

func TestShapefileSource_Name(t *testing.T) {
	src := NewShapefileSource(newShapefileFetcher(), "http://example.invalid/c.zip", "18", t.TempDir())
	assert.Equal(t, "shapefile", src.Name())
}
