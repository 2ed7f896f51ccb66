package deploy

import (
	"fmt"

	"github.com/imamik/cephrig/internal/provisioning"
	"github.com/imamik/cephrig/internal/topology"
)

const phase = "execute"

// Provisioner runs ceph-ansible through a topology.Runner.
type Provisioner struct {
	runner *topology.Runner
}

// NewProvisioner creates a deploy provisioner.
func NewProvisioner(runner *topology.Runner) *Provisioner {
	return &Provisioner{runner: runner}
}

// Name implements the Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the Phase interface. The playbook output is kept in
// the run state even when the playbook fails.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	docs := ctx.State.Documents()
	if docs.Inventory == nil || docs.Playbook == nil {
		return fmt.Errorf("inventory and playbook must be generated before %s", phase)
	}

	ex, err := p.runner.Select(ctx.Cluster)
	if err != nil {
		return fmt.Errorf("failed to select installer: %w", err)
	}
	ctx.State.Execution = ex
	ctx.Observer.Printf("[%s] Installer %s, %s mode", phase, ex.Installer.Name(), ex.Mode)

	if err := p.runner.Stage(ctx, ex, docs); err != nil {
		return fmt.Errorf("failed to stage ceph-ansible: %w", err)
	}

	output, err := p.runner.Execute(ctx, ex)
	ctx.State.PlaybookOutput = output
	if err != nil {
		return err
	}

	if err := p.runner.SetupClients(ctx, ex, ctx.Cluster); err != nil {
		return fmt.Errorf("failed to set up clients: %w", err)
	}
	return nil
}
