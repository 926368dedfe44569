package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"hako/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hako",
		Short: "Deploy and manage application front ends on AWS",
	}

	rootCmd.AddCommand(cmd.NewDeployCmd())
	rootCmd.AddCommand(cmd.NewStatusCmd())
	rootCmd.AddCommand(cmd.NewRemoveCmd())
	rootCmd.AddCommand(cmd.NewHistoryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
