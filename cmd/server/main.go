/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and PAYROLL_* environment variables
  2. Parse command-line flags (override the environment)
  3. Initialize SQLite store
  4. Seed payroll configuration (from -config, or defaults on a fresh DB)
  5. Configure HTTP router and start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (env PAYROLL_PORT, default: 8080)
  -db        SQLite database path (env PAYROLL_DB, default: payroll.db)
             Use ":memory:" for in-memory database
  -config    JSON/YAML payroll configuration to seed (env PAYROLL_CONFIG)
  -workers   Parallel calculations per run (env PAYROLL_WORKERS, default: 4)
  -log-level debug, info, warn, error (env PAYROLL_LOG_LEVEL)

SEEDING:
  With -config the file replaces the stored configuration on every start.
  Without it, an empty database is seeded with payroll.DefaultConfig and an
  existing one is left alone.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/payroll.db"

  # Seed from a YAML document
  ./server -config=./payroll.yaml

  # Run with in-memory database on a different port
  ./server -db=":memory:" -port=3000

SEE ALSO:
  - config/config.go: Environment configuration
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Flags
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	configFile := flag.String("config", cfg.ConfigFile, "JSON/YAML payroll configuration to seed")
	workers := flag.Int("workers", cfg.Workers, "Parallel calculations per payroll run")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.Parse()
	cfg.LogLevel = *logLevel

	logger := api.NewLogger(os.Stdout, cfg.SlogLevel(), cfg.Env, cfg.IsProduction())
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	if err := seed(context.Background(), store, *configFile, logger); err != nil {
		logger.Error("failed to seed payroll configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize handler
	handler := api.NewHandler(store, logger)
	handler.Workers = *workers

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", slog.Int("port", *port), slog.String("db", *dbPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
		return
	}

	logger.Info("server stopped")
}

// seed writes the payroll configuration the server starts with.
func seed(ctx context.Context, store payroll.Store, path string, logger *slog.Logger) error {
	if path != "" {
		cfg, err := factory.NewConfigFactory().ParseFile(path)
		if err != nil {
			return err
		}
		if err := payroll.SeedConfig(ctx, store, cfg); err != nil {
			return err
		}
		logger.Info("payroll configuration seeded from file", slog.String("path", path))
		return nil
	}

	brackets, err := store.ListTaxBrackets(ctx)
	if err != nil {
		return err
	}
	if len(brackets) > 0 {
		return nil
	}
	if err := payroll.SeedConfig(ctx, store, payroll.DefaultConfig()); err != nil {
		return err
	}
	logger.Info("empty database seeded with default payroll configuration")
	return nil
}
