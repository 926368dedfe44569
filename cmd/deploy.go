package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hako/internal/frontend"
)

func NewDeployCmd() *cobra.Command {
	var profile string
	var region string
	var dryRun bool
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "deploy <app-definition>",
		Short: "Converge the app's load-balancing front end",
		Long: `Creates whatever part of the front end is missing (load balancer,
target group, listeners) and applies the configured attribute overrides.
Safe to re-run: existing resources are left alone.`,
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

			done, err := r.Converge(ctx)
			if err != nil {
				return err
			}
			if !done {
				logger.Info().Msg("no front end configured, nothing to do")
				return nil
			}
			if err := r.Tune(ctx); err != nil {
				return err
			}

			lb, err := r.FindLoadBalancer(ctx)
			if err != nil {
				return err
			}
			if lb != nil {
				fmt.Fprintln(cmd.OutOrStdout(), lb.DNSName)
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
