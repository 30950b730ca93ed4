package main

import (
	"github.com/SAP-F-2025/mmse-service/pkg"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := setupLogging(cfg)

			db, err := pkg.InitDatabase(cfg)
			if err != nil {
				return err
			}
			if err := pkg.Migrate(db); err != nil {
				return err
			}
			logger.Info("Database migrated")
			return nil
		},
	}
	cmd.Flags().String("database-url", "", "PostgreSQL DSN (or DATABASE_URL)")
	return cmd
}
