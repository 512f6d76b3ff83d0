/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the absence engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from environment variables
  2. Build the structured logger
  3. Initialize SQLite store
  4. Wire the services and the API handler
  5. Start server with graceful shutdown

CONFIGURATION:
  All config via environment variables (see config/config.go):
    APP_ADDR      Listen address (default :8080)
    DB_PATH       SQLite database path (default absence.db, ":memory:" works)
    LOG_LEVEL     trace|debug|info|warn|error
    APP_ENV       "development" gives console logs, anything else JSON
    CORS_ORIGINS  Comma-separated allowed browser origins

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (APP_SHUTDOWN_TIMEOUT)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridian/absence-engine/api"
	"github.com/meridian/absence-engine/config"
	"github.com/meridian/absence-engine/logger"
	"github.com/meridian/absence-engine/service"
	"github.com/meridian/absence-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.AppEnv, Level: cfg.LogLevel})

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("failed to initialize database")
	}
	defer store.Close()

	// Wire services
	handler := &api.Handler{
		Requests:    service.NewRequestService(store, log),
		Overtimes:   service.NewOvertimeService(store, store, store, store, log),
		Renewals:    service.NewRenewalService(store, log),
		Memberships: service.NewMembershipService(store, log),
		Balances:    service.NewBalanceService(store, store, store, log),
		Log:         log,
	}

	router := api.NewRouter(handler, cfg.Origins())

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", cfg.AppAddr).Str("db", cfg.DBPath).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
