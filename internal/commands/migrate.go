package commands

import (
	"github.com/spf13/cobra"

	"github.com/aqui-app/aqui-api/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Migrate(cmd.Context(), cfg); err != nil {
			logger.WithError(err).Error("migration failed")
			return err
		}
		logger.Info("schema up to date")
		return nil
	},
}
