package cmd

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"hako/internal/history"
)

func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <app-id>",
		Short: "Show recent deploy and removal actions for an app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := history.Open(history.DefaultPath())
			if err != nil {
				return err
			}
			defer ledger.Close()

			events, err := ledger.Recent(args[0], limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no recorded actions for %s\n", args[0])
				return nil
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Time", "Action", "Resource", "Detail", "Dry Run"})
			for _, ev := range events {
				table.Append([]string{
					ev.At.Format(time.RFC3339),
					ev.Action,
					ev.Resource,
					ev.Detail,
					fmt.Sprintf("%t", ev.DryRun),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")

	return cmd
}
