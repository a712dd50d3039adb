package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	"dropship-tracking/internal/handler"
	"dropship-tracking/internal/mw"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run on a schedule and expose the ops API",
	Long: `Run a reconciliation pass every RUN_INTERVAL and serve:

  GET  /healthz        - database reachability
  GET  /metrics        - Prometheus metrics
  POST /api/runs       - trigger a run (operator token required)
  GET  /api/runs/last  - last run summary (operator token required)`,
	RunE: serve,
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required for serve")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/healthz", handler.HealthHandler(a.orders))
	r.Handle("/metrics", a.metrics.Handler())

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret))

		r.Post("/api/runs", handler.TriggerRunHandler(ctx, a.worker))
		r.Get("/api/runs/last", handler.LastRunHandler(a.worker))
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go a.worker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
		slog.Info("shutting down...")
	case err := <-serveErr:
		slog.Error("server failed", "error", err)
		cancel()
		a.worker.Wait()
		return err
	}

	cancel() // stop worker
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	// Let an in-flight run finish before the deferred Close releases the DB.
	a.worker.Wait()

	slog.Info("server stopped")
	return nil
}
