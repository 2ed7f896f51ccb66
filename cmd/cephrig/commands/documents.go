package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/cephrig/cmd/cephrig/handlers"
)

// Inventory returns the command printing the generated inventory.
func Inventory() *cobra.Command {
	var opts handlers.Options

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Print the generated ansible inventory",
		Long: `Gather facts from the targets and print the inventory a run would stage.
Nothing is installed or changed on the targets.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Inventory(cmd.Context(), opts)
		},
	}

	bindOptions(cmd, &opts)

	return cmd
}

// Plan returns the command printing the playbook.
func Plan() *cobra.Command {
	var opts handlers.Options

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the generated playbook",
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Plan(opts)
		},
	}

	bindOptions(cmd, &opts)

	return cmd
}
