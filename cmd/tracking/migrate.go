package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"dropship-tracking/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		db, err := database.NewDB(cmd.Context(), cfg.DatabaseURI)
		if err != nil {
			return err
		}
		defer database.CloseDB(db)

		if err := database.InitSchema(cmd.Context(), db); err != nil {
			return err
		}
		slog.Info("schema is up to date")
		return nil
	},
}
