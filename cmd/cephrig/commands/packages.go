package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/cephrig/cmd/cephrig/handlers"
	"github.com/imamik/cephrig/internal/packaging"
)

// Packages returns the command group for the package lifecycle.
func Packages() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packages",
		Short: "Manage Ceph packages on the targets",
		Long: `Install, upgrade or remove the Ceph packages of every target, or remove the
Ceph package repository. The package manager is chosen per host from its
gathered facts.`,
	}

	cmd.AddCommand(packageCommand(packaging.OpInstall, "Install the Ceph packages"))
	cmd.AddCommand(packageCommand(packaging.OpUpgrade, "Upgrade the Ceph packages"))
	cmd.AddCommand(packageCommand(packaging.OpRemove, "Remove the Ceph packages"))
	cmd.AddCommand(packageCommand(packaging.OpRemoveSources, "Remove the Ceph package repository"))

	return cmd
}

func packageCommand(op, short string) *cobra.Command {
	var opts handlers.Options

	cmd := &cobra.Command{
		Use:   op,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Packages(cmd.Context(), opts, op)
		},
	}

	bindOptions(cmd, &opts)

	return cmd
}
