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

	"github.com/norland/catena/internal/api"
	"github.com/norland/catena/internal/catalog"
	"github.com/norland/catena/internal/catalogservice"
	"github.com/norland/catena/internal/fetch"
	"github.com/norland/catena/internal/mcpserver"
	"github.com/norland/catena/internal/sse"
	"github.com/norland/catena/internal/storage"
	"github.com/norland/catena/internal/watch"
)

// buildService wires the catalog database, output storage, and fetch
// client into a catalog service. The returned close function releases
// the database.
func buildService(cfg *Config, logger *slog.Logger) (*catalogservice.Service, func(), error) {
	if err := os.MkdirAll(cfg.Catalog.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Catalog.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := catalog.Open(cfg.Catalog.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("init catalog db: %w", err)
	}

	client := fetch.NewClient(cfg.Merge.Timeout())

	svc := catalogservice.New(db, store, client, catalogservice.Options{
		Sources:    cfg.Sources.All(),
		OutputFile: cfg.Catalog.OutputFile,
		Threshold:  cfg.Merge.Threshold(),
	}, logger)

	return svc, func() { _ = db.Close() }, nil
}

func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := app.logger
	if logger == nil {
		logger = newLogger(cfg)
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_dir", cfg.Catalog.DataDir),
		slog.String("sqlite_path", cfg.Catalog.SQLitePath),
		slog.Int("sources", len(cfg.Sources.All())),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, closeDB, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Run initial merge so the catalog is populated on startup.
	if report, err := svc.Refresh(ctx); err != nil {
		logger.Warn("initial merge failed", slog.String("error", err.Error()))
	} else {
		logger.Info("initial merge completed",
			slog.String("run_id", report.RunID),
			slog.Int("final", report.FinalCount))
	}

	// Build API router.
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch local source files and re-merge on change.
	g.Go(func() error {
		return watch.Watch(gCtx, cfg.Sources.Files, 500*time.Millisecond, logger, func(ctx context.Context) error {
			broker.PublishMergeEvent("started", "", nil)
			report, err := svc.Refresh(ctx)
			if err != nil {
				broker.PublishMergeEvent("failed", "", map[string]any{"error": err.Error()})
				return err
			}
			broker.PublishMergeEvent("completed", report.RunID, map[string]any{
				"original_count": report.OriginalCount,
				"final_count":    report.FinalCount,
			})
			return nil
		})
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

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMerge performs a single merge run and exits. It is the CLI
// one-shot mode for cron jobs and CI pipelines.
func RunMerge(ctx context.Context, cfg *Config) error {
	logger := newLogger(cfg)

	svc, closeDB, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	report, err := svc.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	fmt.Printf("Merged %d sources: %d templates in, %d out (%d duplicates removed)\n",
		len(report.Sources), report.OriginalCount, report.FinalCount, report.DuplicatesRemoved)
	if !report.Saved {
		fmt.Println("Catalog document was not saved (empty result).")
	}
	return nil
}

// RunMCP starts the MCP stdio server. Logs go to stderr so stdout
// stays clean for the protocol.
func RunMCP(_ context.Context, cfg *Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, closeDB, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	logger.Info("Starting MCP server on stdio")
	return mcpserver.New(svc).ServeStdio()
}
