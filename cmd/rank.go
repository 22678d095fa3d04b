package cmd

import (
	"github.com/spf13/cobra"

	"github.com/freeman-jiang/resonant/internal/trust"
)

func newRankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Propagate trust through the link graph and store page scores.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			params := trust.DefaultParams()
			params.Damping = app.Config.TrustRank.Damping
			params.Tolerance = app.Config.TrustRank.Tolerance
			params.MaxIterations = app.Config.TrustRank.MaxIterations

			engine := trust.NewEngine(app.Pages, params, app.Logger)
			return engine.Run(cmd.Context())
		},
	}
}
