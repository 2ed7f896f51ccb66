package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/cephrig/cmd/cephrig/handlers"
)

// Health returns the command polling the health of a deployed cluster.
func Health() *cobra.Command {
	var opts handlers.Options

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Wait for the cluster to report HEALTH_OK",
		Long: `Poll ceph health on the first monitor until the cluster reports HEALTH_OK
or the attempt budget (CEPHRIG_HEALTH_ATTEMPTS) is spent.

Examples:
  cephrig health
  CEPHRIG_HEALTH_ATTEMPTS=10 cephrig health -c nightly.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Health(cmd.Context(), opts)
		},
	}

	bindOptions(cmd, &opts)

	return cmd
}
