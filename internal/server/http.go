package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smeshko/text-extractor/internal/state"
)

// StateSource exposes the current session state.
type StateSource interface {
	State() state.ApplicationState
}

// HealthChecker is satisfied by *repository.DB.
type HealthChecker interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

type stateResponse struct {
	state.ApplicationState
	Summary string `json:"summary,omitempty"`
}

// NewRouter serves /healthz, /state and /metrics. db may be nil.
func NewRouter(src StateSource, db HealthChecker, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		resp := healthResponse{Status: "ok"}
		code := http.StatusOK
		if db != nil {
			resp.Database = "ok"
			if err := db.HealthCheck(req.Context(), 2*time.Second); err != nil {
				logger.Warn("healthz.database.failed", "error", err)
				resp.Status, resp.Database = "degraded", "unavailable"
				code = http.StatusServiceUnavailable
			}
		}
		writeJSON(w, code, resp, logger)
	})

	r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
		snap := src.State()
		resp := stateResponse{ApplicationState: snap}
		if snap.Results != nil {
			resp.Summary = snap.Results.StatusSummary()
		}
		writeJSON(w, http.StatusOK, resp, logger)
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("http.encode.failed", "error", err)
	}
}
