package facts

import (
	"fmt"

	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/hostvars"
	"github.com/imamik/cephrig/internal/provisioning"
	"github.com/imamik/cephrig/internal/remote"
)

const phase = "facts"

// Provisioner gathers facts on every host, one host at a time.
type Provisioner struct {
	gather hostvars.FactsGatherer
}

// NewProvisioner creates a facts provisioner. A nil gatherer uses
// remote.GatherFacts.
func NewProvisioner(gather hostvars.FactsGatherer) *Provisioner {
	if gather == nil {
		gather = remote.GatherFacts
	}
	return &Provisioner{gather: gather}
}

// Name implements the Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the Phase interface. Hosts that already carry facts
// are left alone; the first failure stops the phase.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	var pending []*cluster.Host
	for _, h := range ctx.Cluster.Hosts() {
		if h.Facts == nil {
			pending = append(pending, h)
		}
	}

	ctx.Observer.Printf("[%s] Gathering facts on %d hosts", phase, len(pending))
	for _, h := range pending {
		if err := p.gatherHost(ctx, h); err != nil {
			return fmt.Errorf("failed to gather facts: %s: %w", h.Name(), err)
		}
	}
	return nil
}

func (p *Provisioner) gatherHost(ctx *provisioning.Context, h *cluster.Host) error {
	f, err := p.gather(ctx, h.Remote)
	if err != nil {
		return err
	}
	h.Facts = f
	ctx.Observer.Printf("[%s] %s: interface=%s subnet=%s packages=%s", phase, h.Name(), f.Interface, f.CIDR, f.PackageType)
	return nil
}
