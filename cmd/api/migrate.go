package main

import (
	"fmt"

	"course-marketplace/internal/client"
	"course-marketplace/internal/config"

	"github.com/caarlos0/env/v10"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Create or update every table and index, including the unique
(user, course) index on purchases and the active-checkout index.

Only the DATABASE_* variables are read.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var dbCfg config.Database
			if err := env.Parse(&dbCfg); err != nil {
				return fmt.Errorf("parse database config: %w", err)
			}

			db, err := client.InitDBClient(dbCfg)
			if err != nil {
				return err
			}

			if err := client.AutoMigrate(db); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database\n", dbCfg.Driver)
			return nil
		},
	}
}
