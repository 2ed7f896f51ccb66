package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/cephrig/cmd/cephrig/handlers"
)

// Run returns the command executing the ceph-ansible task.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: auto-detect cephrig.yaml)
//	--log-format: text or json
//
// Environment variables:
//
//	CEPHRIG_SSH_KEY: SSH private key used to reach the targets
//	HCLOUD_TOKEN: Hetzner Cloud API token, to resolve target addresses
func Run() *cobra.Command {
	var opts handlers.Options

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Deploy Ceph on the targets with ceph-ansible",
		Long: `Deploy Ceph on the configured targets with ceph-ansible.

The inventory and playbook are generated from the target roles and gathered
host facts, staged on the first monitor and executed there. When
wait_for_health is enabled the command waits for HEALTH_OK.

Examples:
  # Run the task described by cephrig.yaml
  cephrig run

  # Use a specific config and JSON logs
  cephrig run -c nightly.yaml --log-format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Run(cmd.Context(), opts)
		},
	}

	bindOptions(cmd, &opts)

	return cmd
}
