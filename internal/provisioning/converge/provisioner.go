package converge

import (
	"errors"

	"github.com/imamik/cephrig/internal/provisioning"
	"github.com/imamik/cephrig/internal/topology"
)

const phase = "health"

// Provisioner polls cluster health on the installer.
type Provisioner struct {
	runner *topology.Runner
}

// NewProvisioner creates a health provisioner.
func NewProvisioner(runner *topology.Runner) *Provisioner {
	return &Provisioner{runner: runner}
}

// Name implements the Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	ex := ctx.State.Execution
	if ex == nil {
		return errors.New("playbook has not been executed")
	}

	status, polled, err := p.runner.WaitForHealth(ctx, ex)
	ctx.State.HealthStatus = string(status)
	ctx.State.HealthPolled = polled
	if err != nil {
		return err
	}
	if polled {
		provisioning.LogHealthCheck(ctx.Observer, ex.Installer.Name(), string(status))
	}
	return nil
}
