package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-processing",
		Short: "Return tasks stuck in PROCESSING to PENDING after a crash.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			released, err := app.Tasks.ResetProcessing(cmd.Context())
			if err != nil {
				return err
			}
			app.Logger.Info("released stuck tasks", zap.Int64("count", released))
			return nil
		},
	}
}
