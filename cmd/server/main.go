// Package main implements the entry point for the carpool API server:
// drivers publish routes with a fixed seat capacity and passengers reserve
// and cancel seats on them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/openride/carpool-api/internal/config"
	"github.com/openride/carpool-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String(
		"migrate",
		"",
		"run database migrations instead of the server: up, down or status",
	)
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("carpool-api: %v", err)
	}
}

// run loads configuration, sets up logging and either executes a migration
// command or starts the HTTP server.
func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if migrateCmd != "" {
		defer func() {
			if err := db.Close(); err != nil {
				appLogger.Error("failed to close database", "error", err)
			}
		}()
		return runMigrations(db, migrateCmd, appLogger)
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.startHTTPServer(context.Background(), app.setupRouter())
}
