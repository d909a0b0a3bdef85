package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/docroute/internal/cli"
	"github.com/example/docroute/internal/version"
)

func main() {
	var actor string

	rootCmd := &cobra.Command{
		Use:     "docroute",
		Short:   "docroute - multi-step document approval",
		Version: version.String(),
		Long: `docroute routes documents through ordered approval steps. Each step names
one or more approvers who must all approve before the next step opens; any
rejection sends the document back, and a resubmission keeps earlier approvals.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cli.DetectAndStoreActor(actor)
	}
	rootCmd.PersistentFlags().StringVar(&actor, "as", "", "Act as this user (default $DOCROUTE_ACTOR, then $USER)")

	// Setup
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())

	// Entity commands
	rootCmd.AddCommand(cli.DocumentCmd())
	rootCmd.AddCommand(cli.RouteCmd())
	rootCmd.AddCommand(cli.ApprovalCmd())

	// API
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
