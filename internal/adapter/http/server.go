package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ViewProvider returns the views of the last completed run.
type ViewProvider interface {
	Views() (*domain.Views, bool)
}

var errNoViews = errors.New("no completed run yet")

// Server exposes health, readiness, metrics and the derived views over HTTP.
type Server struct {
	httpServer *http.Server
	views      ViewProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api/v1 view routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, views ViewProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		views:  views,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/views", s.handleViews)
	mux.HandleFunc("GET /api/v1/views/{name}", s.handleView)
	mux.HandleFunc("GET /api/v1/locations/{location}/trends", s.handleLocationTrends)
	mux.HandleFunc("GET /api/v1/stations", s.handleStations)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleViews(w http.ResponseWriter, _ *http.Request) {
	views, ok := s.views.Views()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, errNoViews)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, views)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	views, ok := s.views.Views()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, errNoViews)
		return
	}
	name := r.PathValue("name")
	view, ok := views.Named(name)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown view: "+name))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, view)
}

func (s *Server) handleLocationTrends(w http.ResponseWriter, r *http.Request) {
	views, ok := s.views.Views()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, errNoViews)
		return
	}
	location := r.PathValue("location")
	trends, ok := views.TrendsOf(location)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown location: "+location))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, trends)
}

func (s *Server) handleStations(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, domain.Stations())
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
