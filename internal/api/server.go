// Package api serves the assistant over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/vietddude/fridgechef/internal/chef"
	"github.com/vietddude/fridgechef/internal/health"
	"github.com/vietddude/fridgechef/internal/metrics"
)

// UserHeader carries the caller's opaque user id.
const UserHeader = "X-User-ID"

// MaxImageBytes bounds uploaded photos.
const MaxImageBytes = 10 << 20

// Server provides the HTTP API plus health and metrics endpoints.
type Server struct {
	server *http.Server
}

// NewServer creates a new API server.
func NewServer(svc *chef.Service, monitor *health.Monitor, port int) *Server {
	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           NewHandler(svc, monitor),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewHandler builds the routing table.
func NewHandler(svc *chef.Service, monitor *health.Monitor) http.Handler {
	h := &handler{svc: svc}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/ingredients/detect", h.handleDetect)
	mux.HandleFunc("POST /api/recipes/generate", h.handleGenerate)
	mux.HandleFunc("POST /api/recipes/adapt", h.handleAdapt)
	mux.HandleFunc("GET /api/favorites", h.handleListFavorites)
	mux.HandleFunc("POST /api/favorites", h.handleAddFavorite)
	mux.HandleFunc("DELETE /api/favorites/{id}", h.handleDeleteFavorite)
	mux.HandleFunc("GET /api/history", h.handleHistory)
	mux.HandleFunc("GET /api/profile", h.handleGetProfile)
	mux.HandleFunc("PUT /api/profile", h.handlePutProfile)
	mux.HandleFunc("GET /api/streak", h.handleStreak)

	if monitor != nil {
		health.Register(mux, monitor)
	}
	return instrument(mux)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument logs each request and counts it by route pattern and status.
func instrument(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		mux.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.code,
			"duration", time.Since(start),
		)
	})
}
