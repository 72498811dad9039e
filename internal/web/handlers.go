package web

import (
	"bytes"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/hartylabs/housing-atlas/internal/atlas"
	"github.com/hartylabs/housing-atlas/internal/faults"
	"github.com/hartylabs/housing-atlas/internal/model"
)

// handleIndex serves the embedded map page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// handleHealthz reports liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// metricInfo is one entry of the metric toggle.
type metricInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// handleMetrics lists the two displayable metrics in toggle order.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	out := make([]metricInfo, 0, 2)
	for _, m := range model.Metrics() {
		out = append(out, metricInfo{Name: string(m), Label: m.Label()})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// handleChoropleth returns the merged view as a GeoJSON FeatureCollection
// for the requested metric. On any fetch-cycle failure the response is a
// single error body: no partial map is ever sent.
func (s *Server) handleChoropleth(w http.ResponseWriter, r *http.Request) {
	metric, err := model.ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown metric")
		return
	}

	snap, err := s.atlas.Snapshot(r.Context())
	if err != nil {
		s.renderFailed(w, err)
		return
	}

	payload, err := atlas.FeatureCollection(snap, metric)
	if err != nil {
		s.renderFailed(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("X-Snapshot-ID", snap.ID)
	_, _ = w.Write(payload)
}

// handleExportCSV serves the merged table as a CSV attachment.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap, err := s.atlas.Snapshot(r.Context())
	if err != nil {
		s.renderFailed(w, err)
		return
	}

	// Buffer the encoding so a failure can still produce an error status.
	var buf bytes.Buffer
	if err := atlas.WriteCSV(&buf, snap); err != nil {
		s.renderFailed(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="county_roi_tax.csv"`)
	w.Header().Set("X-Snapshot-ID", snap.ID)
	_, _ = w.Write(buf.Bytes())
}

// handleExportXLSX serves the merged table as a workbook attachment.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	snap, err := s.atlas.Snapshot(r.Context())
	if err != nil {
		s.renderFailed(w, err)
		return
	}

	var buf bytes.Buffer
	if err := atlas.WriteXLSX(&buf, snap); err != nil {
		s.renderFailed(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="county_roi_tax.xlsx"`)
	w.Header().Set("X-Snapshot-ID", snap.ID)
	_, _ = w.Write(buf.Bytes())
}

// handleCacheStats reports snapshot cache statistics.
func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.atlas.CacheStats())
}

// handleCacheInvalidate drops the cached snapshot.
func (s *Server) handleCacheInvalidate(w http.ResponseWriter, _ *http.Request) {
	s.atlas.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// renderFailed maps a fetch-cycle error to a status code and logs it.
func (s *Server) renderFailed(w http.ResponseWriter, err error) {
	zap.L().Error("render cycle failed", zap.Error(err))
	writeError(w, faults.HTTPStatus(err), "data fetch failed; map not rendered")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
