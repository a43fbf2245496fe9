package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/agentforge-io/agent-builder/pkg/config"
	"github.com/agentforge-io/agent-builder/pkg/database"
	"github.com/agentforge-io/agent-builder/pkg/logging"
)

const migrationsPath = "migrations"

// openDatabase connects to Postgres, retrying while the server starts up.
func openDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	connStr := cfg.Database.ConnectionString()
	logger.Info("Connecting to database",
		zap.String("connection", logging.SanitizeConnectionString(connStr)))

	return database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: cfg.Database.MaxConnections,
		MinConnections: cfg.Database.MaxIdleConns,
	}, logger.Named("database"))
}
