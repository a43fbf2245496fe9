package main

import (
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/agentforge-io/agent-builder/pkg/database"
)

var rollbackSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		db, err := openDatabase(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		return database.RunMigrationsWithPool(db.Pool, migrationsPath, logger.Named("migrations"))
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		db, err := openDatabase(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		sqlDB := stdlib.OpenDBFromPool(db.Pool)
		defer sqlDB.Close()
		return database.RollbackMigrations(sqlDB, migrationsPath, rollbackSteps, logger.Named("migrations"))
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&rollbackSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}
