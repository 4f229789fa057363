package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/aqui-app/aqui-api/internal/app"
)

// sweepCmd runs one auto-expiry pass, for cron jobs and schedulers that
// cannot reach the internal HTTP endpoint.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "End live sessions whose auto end time has passed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		application, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer application.Close()

		result, err := application.Services().Sweeper.Sweep(ctx)
		if err != nil {
			logger.WithError(err).Error("sweep failed")
			return err
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
	},
}
