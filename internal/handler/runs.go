package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"dropship-tracking/internal/mw"
	"dropship-tracking/internal/worker"
)

type RunTrigger interface {
	Trigger(ctx context.Context) error
}

type LastRunSource interface {
	LastRun() *worker.RunSummary
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// TriggerRunHandler starts a reconciliation run in the background. The run
// is bound to base so it survives the request but not a server shutdown.
func TriggerRunHandler(base context.Context, runner RunTrigger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		operator, _ := mw.Operator(r.Context())
		if err := runner.Trigger(base); err != nil {
			if errors.Is(err, worker.ErrRunInProgress) {
				http.Error(w, "run already in progress", http.StatusConflict)
				return
			}
			if errors.Is(err, worker.ErrStopped) {
				http.Error(w, "shutting down", http.StatusServiceUnavailable)
				return
			}
			slog.Error("trigger run failed", "operator", operator, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		slog.Info("tracking run triggered", "operator", operator)
		w.WriteHeader(http.StatusAccepted)
	}
}

func LastRunHandler(src LastRunSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		last := src.LastRun()
		if last == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(last); err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
		}
	}
}

// HealthHandler reports whether the order database is reachable.
func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
