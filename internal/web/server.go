// Package web serves the interactive county map: an embedded Leaflet page
// backed by JSON endpoints for the choropleth payload, the metric list,
// and the table downloads.
package web

import (
	"embed"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hartylabs/housing-atlas/internal/atlas"
)

//go:embed static
var staticFS embed.FS

// Options configures the HTTP router.
type Options struct {
	AllowedOrigins []string
}

// Server exposes the atlas over HTTP.
type Server struct {
	atlas *atlas.Atlas
}

// NewRouter builds the chi router for the map server.
func NewRouter(a *atlas.Atlas, opts Options) http.Handler {
	s := &Server{atlas: a}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodDelete},
		}))
	}

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/metrics", s.handleMetrics)
		r.Get("/choropleth", s.handleChoropleth)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/export.xlsx", s.handleExportXLSX)
		r.Get("/cache", s.handleCacheStats)
		r.Delete("/cache", s.handleCacheInvalidate)
	})

	return r
}

// requestLogger logs each request with the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
