package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/docroute/internal/wire"
)

var approvalCmd = &cobra.Command{
	Use:   "approval",
	Short: "Inspect approval attempts",
	Long:  "View approval sheets and overdue steps",
}

var approvalShowCmd = &cobra.Command{
	Use:   "show [instance-id]",
	Short: "Show an approval sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ApprovalAdapter().Sheet(NewContext(), args[0])
	},
}

var approvalOverdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List pending steps past their deadline",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf := time.Now()
		if v, _ := cmd.Flags().GetString("as-of"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return fmt.Errorf("--as-of must be an RFC 3339 timestamp: %w", err)
			}
			asOf = t
		}
		return wire.ApprovalAdapter().Overdue(NewContext(), asOf)
	},
}

func init() {
	approvalOverdueCmd.Flags().String("as-of", "", "Reference time (RFC 3339, default now)")

	approvalCmd.AddCommand(approvalShowCmd)
	approvalCmd.AddCommand(approvalOverdueCmd)
}

// ApprovalCmd returns the approval command
func ApprovalCmd() *cobra.Command {
	return approvalCmd
}
