package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ogonki/streak-api/internal/infrastructure/database"
	"github.com/ogonki/streak-api/internal/infrastructure/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
	Long:  `Apply, roll back and inspect the SQL migrations embedded in the binary against DATABASE_URL.`,
	RunE:  runMigrateUp,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  runMigrateUp,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE:  runMigrateDown,
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied migration version",
	RunE:  runMigrateVersion,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)

	migrateDownCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
}

// withMigrator opens the database with the service config and hands fn a Migrator.
func withMigrator(cmd *cobra.Command, fn func(*database.Migrator) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	db, err := database.Open(cmd.Context(), database.Config{
		DSN:             cfg.DatabaseURL,
		LogLevel:        gormlogger.Warn,
		ConnectAttempts: cfg.DBConnectAttempts,
		RetryDelay:      cfg.DBRetryDelay,
	}, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func(db *gorm.DB) { _ = database.Close(db) }(db)

	mg, err := database.NewMigrator(cmd.Context(), db, log)
	if err != nil {
		return err
	}
	defer mg.Close()

	return fn(mg)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	return withMigrator(cmd, func(mg *database.Migrator) error {
		return mg.Up()
	})
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	steps, _ := cmd.Flags().GetInt("steps")
	return withMigrator(cmd, func(mg *database.Migrator) error {
		return mg.Down(steps)
	})
}

func runMigrateVersion(cmd *cobra.Command, args []string) error {
	return withMigrator(cmd, func(mg *database.Migrator) error {
		version, dirty, err := mg.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version: %d\ndirty:   %t\n", version, dirty)
		return nil
	})
}
