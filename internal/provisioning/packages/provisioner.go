package packages

import (
	"context"
	"fmt"

	"github.com/imamik/cephrig/internal/packaging"
	"github.com/imamik/cephrig/internal/provisioning"
	"github.com/imamik/cephrig/internal/remote"
)

// Provisioner applies one packaging operation across the cluster.
type Provisioner struct {
	installer *packaging.Installer
	op        string
}

// NewProvisioner creates a provisioner for op, one of the packaging.Op
// constants.
func NewProvisioner(installer *packaging.Installer, op string) (*Provisioner, error) {
	switch op {
	case packaging.OpInstall, packaging.OpUpgrade, packaging.OpRemove, packaging.OpRemoveSources:
	default:
		return nil, fmt.Errorf("unknown package operation %q", op)
	}
	return &Provisioner{installer: installer, op: op}, nil
}

// Name implements the Phase interface.
func (p *Provisioner) Name() string {
	return "packages-" + p.op
}

// Provision implements the Phase interface. Hosts are processed one at a
// time in hostname order; the first failure stops the operation.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	run := p.operation()
	hosts := ctx.Cluster.Hosts()

	ctx.Observer.Printf("[%s] Running on %d hosts", p.Name(), len(hosts))
	for _, h := range hosts {
		if err := run(ctx, h.Remote); err != nil {
			return fmt.Errorf("package %s failed on %s: %w", p.op, h.Name(), err)
		}
	}
	return nil
}

func (p *Provisioner) operation() func(context.Context, remote.Remote) error {
	switch p.op {
	case packaging.OpUpgrade:
		return p.installer.Upgrade
	case packaging.OpRemove:
		return p.installer.Remove
	case packaging.OpRemoveSources:
		return p.installer.RemoveSourcesList
	default:
		return p.installer.Install
	}
}
