package documents

import (
	"fmt"

	"github.com/imamik/cephrig/internal/artifact"
	"github.com/imamik/cephrig/internal/provisioning"
	"github.com/imamik/cephrig/internal/topology"
)

// PlaybookProvisioner renders the topology plan into a playbook.
type PlaybookProvisioner struct{}

// NewPlaybookProvisioner creates a playbook provisioner.
func NewPlaybookProvisioner() *PlaybookProvisioner {
	return &PlaybookProvisioner{}
}

// Name implements the Phase interface.
func (p *PlaybookProvisioner) Name() string {
	return "playbook"
}

// Provision implements the Phase interface.
func (p *PlaybookProvisioner) Provision(ctx *provisioning.Context) error {
	data, err := topology.RenderPlan(ctx.Config.CephAnsible.Playbook)
	if err != nil {
		return fmt.Errorf("failed to render playbook: %w", err)
	}

	a, err := artifact.WriteTemp(artifact.PlaybookPrefix, data)
	if err != nil {
		return err
	}
	ctx.State.Artifacts.Add(a)
	ctx.State.PlaybookArtifact = a

	provisioning.LogArtifactWritten(ctx.Observer, p.Name(), "playbook", a.Path)
	return nil
}
