package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/docroute/internal/ctxutil"
	"github.com/example/docroute/internal/wire"
)

var documentCmd = &cobra.Command{
	Use:     "document",
	Aliases: []string{"doc"},
	Short:   "Manage documents and their approval",
	Long:    "Create documents, submit them for approval and record decisions",
}

var documentCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new draft document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		routeID, _ := cmd.Flags().GetString("route")
		return wire.DocumentAdapter().Create(NewContext(), args[0], description, routeID)
	},
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		return wire.DocumentAdapter().List(NewContext(), status, limit)
	},
}

var documentShowCmd = &cobra.Command{
	Use:   "show [document-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.DocumentAdapter().Show(NewContext(), args[0])
		return err
	},
}

var documentBindCmd = &cobra.Command{
	Use:   "bind [document-id] [route-id]",
	Short: "Bind an approval route to a draft or rejected document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.DocumentAdapter().BindRoute(NewContext(), args[0], args[1])
	},
}

var documentSubmitCmd = &cobra.Command{
	Use:   "submit [document-id]",
	Short: "Submit a document for approval",
	Long: `Start a fresh approval attempt. The route given with --route is bound to
the document; without it the document's bound route is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		routeID, _ := cmd.Flags().GetString("route")
		return wire.ApprovalAdapter().Submit(NewContext(), args[0], routeID)
	},
}

var documentResubmitCmd = &cobra.Command{
	Use:   "resubmit [document-id]",
	Short: "Resubmit a rejected document, keeping earlier approvals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ApprovalAdapter().Resubmit(NewContext(), args[0])
	},
}

var documentDecideCmd = &cobra.Command{
	Use:   "decide [document-id] [approved|rejected]",
	Short: "Record a decision on the current step",
	Long: `Record a decision as the acting user (--as, DOCROUTE_ACTOR or USER).

Examples:
  docroute document decide DOC-001 approved --as alice
  docroute document decide DOC-001 rejected -m "budget exceeded"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		approver, err := ctxutil.RequireActor(ctx)
		if err != nil {
			return fmt.Errorf("cannot decide without an actor: pass --as or set DOCROUTE_ACTOR")
		}
		comment, _ := cmd.Flags().GetString("comment")
		return wire.ApprovalAdapter().Decide(ctx, args[0], approver, args[1], comment)
	},
}

var documentCancelCmd = &cobra.Command{
	Use:   "cancel [document-id]",
	Short: "Cancel a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ApprovalAdapter().Cancel(NewContext(), args[0])
	},
}

var documentHistoryCmd = &cobra.Command{
	Use:   "history [document-id]",
	Short: "Show every approval attempt of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.ApprovalAdapter().History(NewContext(), args[0])
	},
}

func init() {
	documentCreateCmd.Flags().StringP("description", "d", "", "Document description")
	documentCreateCmd.Flags().String("route", "", "Route ID to bind")

	documentListCmd.Flags().String("status", "", "Filter by status (draft|pending_approval|approved|rejected|cancelled)")
	documentListCmd.Flags().Int("limit", 0, "Maximum number of documents")

	documentSubmitCmd.Flags().String("route", "", "Route ID to submit against")

	documentDecideCmd.Flags().StringP("comment", "m", "", "Decision comment")

	documentCmd.AddCommand(documentCreateCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentBindCmd)
	documentCmd.AddCommand(documentSubmitCmd)
	documentCmd.AddCommand(documentResubmitCmd)
	documentCmd.AddCommand(documentDecideCmd)
	documentCmd.AddCommand(documentCancelCmd)
	documentCmd.AddCommand(documentHistoryCmd)
}

// DocumentCmd returns the document command
func DocumentCmd() *cobra.Command {
	return documentCmd
}
