package cmd

import (
	"github.com/spf13/cobra"

	"hako/internal/frontend"
)

func NewRemoveCmd() *cobra.Command {
	var profile string
	var region string
	var dryRun bool
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "remove <app-definition>",
		Short: "Tear down the app's load-balancing front end",
		Long: `Prunes the listeners declared in the definition and deletes the load
balancer once no listener remains; a load balancer still carrying other
listeners is left standing. The target group is deleted with a bounded
retry while deregistration keeps it in use.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			def, client, err := loadTarget(ctx, args[0], profile, region)
			if err != nil {
				return err
			}

			logger := newLogger().With().Str("app", def.ID).Logger()
			rec := openHistory(logger, noHistory)

			r := frontend.New(client.ELB, frontend.Options{
				AppID:   def.ID,
				Spec:    def.ELBv2,
				DryRun:  dryRun,
				Logger:  logger,
				History: rec,
			})

			done, err := r.Retire(ctx)
			if err != nil {
				return err
			}
			if !done {
				logger.Info().Msg("no front end configured, nothing to remove")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS profile to use")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region (overrides the definition)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log intended mutations without performing them")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "skip the local history ledger")

	return cmd
}
