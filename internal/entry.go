// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/notebook/internal/api"
	"github.com/starford/notebook/internal/index"
	"github.com/starford/notebook/internal/mcpserver"
	"github.com/starford/notebook/internal/metrics"
	"github.com/starford/notebook/internal/notebook"
	"github.com/starford/notebook/internal/sse"
	"github.com/starford/notebook/internal/storage"
	"github.com/starford/notebook/internal/summarizer"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("uploads_dir", cfg.Uploads.Dir),
		slog.String("llm_model", cfg.LLM.Model),
		slog.Bool("llm_key_set", cfg.LLM.APIKey != ""),
		slog.Bool("index_enabled", cfg.Index.Enabled),
		slog.Bool("mcp_enabled", cfg.MCP.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize upload storage.
	files, err := storage.NewFS(cfg.Uploads.Dir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Metrics.
	exporter := metrics.New()

	// LLM gateway.
	completer := summarizer.NewOpenAI(summarizer.OpenAIConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})
	gateway := summarizer.NewGateway(completer,
		summarizer.WithRecorder(exporter),
		summarizer.WithLogger(logger))

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.Throttle)
	defer broker.Close()
	exporter.WatchClients(broker.ClientCount)

	svcOpts := []notebook.Option{
		notebook.WithEvents(broker),
		notebook.WithObserver(exporter),
		notebook.WithLogger(logger),
		notebook.WithMaxUploadBytes(cfg.Uploads.MaxBytes),
	}

	// Initialize the in-memory search index.
	if cfg.Index.Enabled {
		db, err := index.Open()
		if err != nil {
			return fmt.Errorf("init index: %w", err)
		}
		defer db.Close()
		exporter.WatchIndex(db.Count, index.KindSource, index.KindNote)
		svcOpts = append(svcOpts, notebook.WithIndex(db))
	}

	svc := notebook.NewService(gateway, files, svcOpts...)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := os.Stat(files.Root()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"uploads dir unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", exporter.Handler())

	if cfg.MCP.Enabled {
		r.Handle("/mcp", mcpserver.New(svc, app.version).Handler())
	}

	r.Mount("/", api.NewRouter(svc, files, cfg.App.HTTP.CORSOrigins, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the upload directory for out-of-band removals.
	g.Go(func() error {
		if err := storage.Watch(gCtx, files.Root(), logger, svc.HandleFileEvent); err != nil {
			logger.Warn("upload watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Open SSE streams hold Shutdown until the broker closes them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher exits after a signal.
var errShutdown = errors.New("shutdown requested")
