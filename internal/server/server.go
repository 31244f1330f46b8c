// Package server exposes the read-only HTTP viewer for stored
// snapshots, their statistics, diffs, and generated reports.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aidensmith24/shopifyscraper/internal/snapshot"
	"github.com/aidensmith24/shopifyscraper/internal/stats"
)

// Server wires HTTP handlers to the snapshot store and report
// directory. All endpoints are read only.
type Server struct {
	router     chi.Router
	store      *snapshot.Store
	reportsDir string
	topN       int
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(store *snapshot.Store, reportsDir string, topN int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if topN <= 0 {
		topN = 10
	}
	s := &Server{
		store:      store,
		reportsDir: reportsDir,
		topN:       topN,
		logger:     logger,
	}

	initMetrics()

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(metricsMiddleware)
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/snapshots", s.listSnapshots)
		r.Get("/snapshots/{name}", s.getSnapshot)
		r.Get("/snapshots/{name}/summary", s.getSummary)
		r.Get("/diff", s.getDiff)
	})

	r.Handle("/reports/*", http.StripPrefix("/reports/", http.FileServer(http.Dir(reportsDir))))

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listSnapshots(w http.ResponseWriter, _ *http.Request) {
	entries, err := s.store.List()
	if err != nil {
		s.logger.Error("list snapshots failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	if entries == nil {
		entries = []snapshot.Entry{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"snapshots": entries})
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, chi.URLParam(r, "name"))
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	snap, ok := s.loadSnapshot(w, name)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":        name,
		"store_url":   snap.StoreURL,
		"captured_at": snap.CapturedAt,
		"summary":     stats.Summarize(snap.Products, s.topN),
	})
}

func (s *Server) getDiff(w http.ResponseWriter, r *http.Request) {
	oldName := r.URL.Query().Get("old")
	newName := r.URL.Query().Get("new")
	if oldName == "" || newName == "" {
		s.writeError(w, http.StatusBadRequest, "old and new query parameters are required")
		return
	}
	oldSnap, ok := s.loadSnapshot(w, oldName)
	if !ok {
		return
	}
	newSnap, ok := s.loadSnapshot(w, newName)
	if !ok {
		return
	}
	result, err := snapshot.Diff(oldSnap.Products, newSnap.Products)
	if err != nil {
		s.logger.Error("diff failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to diff snapshots")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"old":  oldName,
		"new":  newName,
		"diff": result,
	})
}

// loadSnapshot translates store errors into HTTP status codes. It
// reports false after writing the error response.
func (s *Server) loadSnapshot(w http.ResponseWriter, name string) (snapshot.Snapshot, bool) {
	snap, err := s.store.Load(name)
	switch {
	case err == nil:
		return snap, true
	case errors.Is(err, snapshot.ErrBadName):
		s.writeError(w, http.StatusBadRequest, "invalid snapshot name")
	case errors.Is(err, os.ErrNotExist):
		s.writeError(w, http.StatusNotFound, "snapshot not found")
	default:
		s.logger.Error("load snapshot failed", zap.String("name", name), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load snapshot")
	}
	return snapshot.Snapshot{}, false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
