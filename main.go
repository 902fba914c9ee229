package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config()
	cfg.logger.Debug("configuration loaded")

	scheduler := NewScheduler(cfg)
	cfg.logger.Info("starting scheduler",
		"scrapeAt", cfg.scrapeAt, "orchestrateAt", cfg.orchestrateAt, "janitorAt", cfg.janitorAt)
	scheduler.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		if err := cfg.runWorkers(ctx); err != nil {
			cfg.logger.Error("worker pool failed", "error", err)
		}
	}()

	mux := http.NewServeMux()

	mux.Handle("POST /routes/create", cfg.authMiddleware(http.HandlerFunc(cfg.handlerCreateRoute)))
	mux.Handle("PUT /routes/update", cfg.authMiddleware(http.HandlerFunc(cfg.handlerUpdateRoute)))
	mux.Handle("DELETE /routes/delete", cfg.authMiddleware(http.HandlerFunc(cfg.handlerDeleteRoute)))
	mux.Handle("GET /routes/fetch", cfg.authMiddleware(http.HandlerFunc(cfg.handlerFetchRoutes)))

	mux.HandleFunc("POST /hooks/user-confirmed", cfg.handlerUserConfirmed)
	mux.Handle("GET /metrics", promhttp.Handler())

	if cfg.devMode {
		cfg.logger.Debug("development mode enabled. Registering /dev endpoints.")
		mux.HandleFunc("POST /dev/scrape", cfg.handlerDevScrape)
		mux.HandleFunc("POST /dev/orchestrate", cfg.handlerDevOrchestrate)
		mux.HandleFunc("POST /dev/janitor", cfg.handlerDevJanitor)
		mux.HandleFunc("POST /dev/reset-db", cfg.handlerDevReset)
	}

	server := &http.Server{
		Addr:    ":" + cfg.port,
		Handler: corsMiddleware(metricsMiddleware(mux)),
	}

	go func() {
		cfg.logger.Info("starting server", "port", cfg.port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			cfg.logger.Error("server startup failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	cfg.logger.Info("shutting down")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		cfg.logger.Error("server shutdown failed", "error", err)
	}
	cfg.queue.Close()
	<-workersDone
	if err := cfg.db.Close(); err != nil {
		cfg.logger.Error("database close failed", "error", err)
	}
	cfg.logger.Info("shutdown complete")
}
