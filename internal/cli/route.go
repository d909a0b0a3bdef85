package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/docroute/internal/wire"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Manage approval routes",
	Long:  "Create, inspect and import approval route definitions",
}

var routeCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a route",
	Long: `Create a route. Each --step takes order:approvers[:deadline_hours].

Examples:
  docroute route create Purchase --step 1:alice,bob:24 --step 2:carol`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetStringArray("step")
		return wire.RouteAdapter().Create(NewContext(), args[0], steps)
	},
}

var routeSetStepsCmd = &cobra.Command{
	Use:   "set-steps [route-id]",
	Short: "Replace the steps of a route",
	Long:  "Replace every step of a route and bump its version. Running approvals keep their snapshot.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetStringArray("step")
		return wire.RouteAdapter().SetSteps(NewContext(), args[0], steps)
	},
}

var routeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.RouteAdapter().List(NewContext())
	},
}

var routeShowCmd = &cobra.Command{
	Use:   "show [route-id]",
	Short: "Show a route and its steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.RouteAdapter().Show(NewContext(), args[0])
	},
}

var routeImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import route definitions from a YAML file",
	Long: `Import routes from YAML. Routes are matched by name: new names are
created, existing ones get their steps replaced. Nothing is written if any
route in the file is invalid.

File format:
  routes:
    - name: Purchase
      steps:
        - order: 1
          approvers: [alice, bob]
          deadline_hours: 24
        - order: 2
          approvers: [carol]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.RouteAdapter().Import(NewContext(), args[0])
	},
}

func init() {
	routeCreateCmd.Flags().StringArray("step", nil, "Step as order:approvers[:deadline_hours] (repeatable)")
	routeSetStepsCmd.Flags().StringArray("step", nil, "Step as order:approvers[:deadline_hours] (repeatable)")

	routeCmd.AddCommand(routeCreateCmd)
	routeCmd.AddCommand(routeSetStepsCmd)
	routeCmd.AddCommand(routeListCmd)
	routeCmd.AddCommand(routeShowCmd)
	routeCmd.AddCommand(routeImportCmd)
}

// RouteCmd returns the route command
func RouteCmd() *cobra.Command {
	return routeCmd
}
