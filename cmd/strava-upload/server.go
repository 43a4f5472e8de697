package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marazt/strava-upload/pkg/domain/activity"
	"github.com/marazt/strava-upload/pkg/infrastructure/metrics"
	"github.com/marazt/strava-upload/pkg/stravasync"
)

type syncer interface {
	Run(ctx context.Context, src activity.Source, runID string) (*stravasync.Report, error)
	FixTypes(ctx context.Context) (*stravasync.FixReport, error)
}

// server serializes runs: a request that finds a run in progress gets 409.
type server struct {
	runner syncer
	logger *slog.Logger
	mu     sync.Mutex
}

func newServer(runner syncer, logger *slog.Logger) *server {
	return &server{runner: runner, logger: logger.With("component", "http")}
}

func newRouter(s *server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Post("/sync/{source}", s.handleSync)
	r.Post("/fix-types", s.handleFixTypes)
	return r
}

func (s *server) handleSync(w http.ResponseWriter, r *http.Request) {
	src, ok := activity.ParseSource(chi.URLParam(r, "source"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown source")
		return
	}
	if !s.mu.TryLock() {
		writeError(w, http.StatusConflict, "a run is already in progress")
		return
	}
	defer s.mu.Unlock()

	runID := uuid.NewString()
	s.logger.Info("Sync requested", "source", src, "run_id", runID, "request_id", middleware.GetReqID(r.Context()))

	report, err := s.runner.Run(r.Context(), src, runID)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"run_id": runID, "error": err.Error(), "report": report})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run_id": runID, "counts": report.Counts(), "report": report})
}

func (s *server) handleFixTypes(w http.ResponseWriter, r *http.Request) {
	if !s.mu.TryLock() {
		writeError(w, http.StatusConflict, "a run is already in progress")
		return
	}
	defer s.mu.Unlock()

	report, err := s.runner.FixTypes(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "report": report})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
