package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homeserver/internal/database"
	"homeserver/internal/handlers"
	"homeserver/internal/ingest"
	"homeserver/internal/logging"
	"homeserver/internal/metrics"
	"homeserver/internal/middleware"
	"homeserver/internal/startup"
	"homeserver/internal/store"
	"homeserver/internal/streaming"
	"homeserver/internal/sweeper"
	"homeserver/internal/thumbnail"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize database
	dbStart := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(ctx, config.DatabasePath)
	cancel()
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Content store and preview toolchain
	st, err := store.New(config.MediaRoot)
	if err != nil {
		startup.LogFatal("Failed to initialize content store: %v", err)
	}
	for _, category := range config.Categories {
		if _, err := st.EnsureCategory(category); err != nil {
			startup.LogFatal("Failed to prepare category %q: %v", category, err)
		}
	}

	vipsEnabled := thumbnail.InitVips() == nil
	defer thumbnail.ShutdownVips()
	startup.LogThumbnailInit(vipsEnabled)

	thumbs, err := thumbnail.NewGenerator(st)
	if err != nil {
		startup.LogFatal("Failed to initialize preview generator: %v", err)
	}

	pipeline := ingest.NewPipeline(st, thumbs, db, config.Categories)
	streamer := streaming.NewStreamer(streaming.DefaultTimeoutWriterConfig())

	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				db.UpdateDBMetrics()
			}
		}()
	}

	// Background reconciliation
	startup.LogSweeperInit(config.SweepInterval, config.SweepGrace)
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sw := sweeper.New(db, st, config.SweepInterval, config.SweepGrace)
	go sw.Start(sweepCtx)

	// HTTP wiring
	h := handlers.New(db, st, pipeline, streamer)
	router := mux.NewRouter()
	h.Register(router)

	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	handler := middleware.Metrics(middleware.DefaultMetricsConfig())(loggedHandler)

	// WriteTimeout stays 0: media streams can legitimately run for
	// hours, and the streaming writer enforces its own timeouts.
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, stopSweeper)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func handleShutdown(srv, metricsSrv *http.Server, stopSweeper context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping sweeper")
	stopSweeper()
	startup.LogShutdownStepComplete("Sweeper stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
