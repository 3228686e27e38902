package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/relia-oss/relia-api/internal/config"
	"github.com/relia-oss/relia-api/internal/events"
	"github.com/relia-oss/relia-api/internal/platform/postgres"
	"github.com/relia-oss/relia-api/internal/service/auth"
	"github.com/relia-oss/relia-api/internal/task"
)

// shutdownTimeout bounds how long graceful HTTP shutdown may take.
const shutdownTimeout = 10 * time.Second

// application holds the composed dependencies of the server. The task
// queue and janitor are built here and injected where needed; nothing
// in the codebase reaches for a process-wide singleton.
type application struct {
	config     *config.Config
	logger     *slog.Logger
	db         *sql.DB
	recorder   events.Recorder
	taskQueue  *task.Queue
	janitor    *task.Janitor
	jwtService auth.JWTService
}

// newApplication wires up all application components from configuration.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	// Telemetry: Postgres-backed when the database is enabled, otherwise
	// events go to the structured log.
	if cfg.Database.Enabled {
		db, err := setupDatabase(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up database: %w", err)
		}
		app.db = db

		if err := runMigrations(ctx, db, logger); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		app.recorder = postgres.NewTelemetryStore(db)
	} else {
		app.recorder = events.NewLogRecorder(logger)
	}

	if cfg.Auth.JWTSecret != "" {
		jwtService, err := auth.NewJWTService(cfg.Auth)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to create JWT service: %w", err)
		}
		app.jwtService = jwtService
	} else {
		logger.Warn("auth disabled: no JWT secret configured, requests run as anonymous")
	}

	app.taskQueue = task.New(task.Config{Workers: cfg.Task.Workers}, app.recorder, logger)
	app.janitor = task.NewJanitor(
		app.taskQueue,
		time.Duration(cfg.Task.CleanupIntervalMinutes)*time.Minute,
		time.Duration(cfg.Task.MaxAgeHours)*time.Hour,
		logger,
	)

	return app, nil
}

// Run starts the janitor and the HTTP server, blocking until the context
// is canceled or the server fails.
func (app *application) Run(ctx context.Context) error {
	app.janitor.Start()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("HTTP server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// cleanup releases application resources in reverse dependency order:
// janitor first, then the queue (draining in-flight work), then the
// database connection.
func (app *application) cleanup() {
	if app.janitor != nil {
		app.janitor.Stop()
	}
	if app.taskQueue != nil {
		app.taskQueue.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
	app.logger.Info("application shut down")
}
