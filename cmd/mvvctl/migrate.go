package main

import (
	"fmt"
	"strconv"

	"github.com/mavilleverte/mvv-api/internal/config"
	"github.com/mavilleverte/mvv-api/internal/database"
	"github.com/mavilleverte/mvv-api/pkg/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(db *database.DB) error {
			return db.RunMigrations()
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(db *database.DB) error {
			return db.MigrateDown()
		})
	},
}

var migrateGotoCmd = &cobra.Command{
	Use:   "goto VERSION",
	Short: "Migrate up or down to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return withDB(cmd, func(db *database.DB) error {
			return db.MigrateToVersion(uint(version))
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateGotoCmd)
}

// withDB opens the database from the environment, runs fn and closes it
func withDB(cmd *cobra.Command, fn func(db *database.DB) error) error {
	level, _ := cmd.Flags().GetString("log-level")
	log := logger.New(level, "")

	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db)
}
