package documents

import (
	"fmt"

	"github.com/imamik/cephrig/internal/artifact"
	"github.com/imamik/cephrig/internal/hostvars"
	"github.com/imamik/cephrig/internal/inventory"
	"github.com/imamik/cephrig/internal/provisioning"
)

// InventoryProvisioner builds the ansible inventory from the cluster.
type InventoryProvisioner struct {
	resolverOpts []hostvars.Option
}

// NewInventoryProvisioner creates an inventory provisioner. The options are
// passed to the host variable resolver.
func NewInventoryProvisioner(opts ...hostvars.Option) *InventoryProvisioner {
	return &InventoryProvisioner{resolverOpts: opts}
}

// Name implements the Phase interface.
func (p *InventoryProvisioner) Name() string {
	return "inventory"
}

// Provision implements the Phase interface.
func (p *InventoryProvisioner) Provision(ctx *provisioning.Context) error {
	resolver := hostvars.NewResolver(ctx.Config.CephAnsible.Vars, p.resolverOpts...)
	inv, err := inventory.NewBuilder(resolver).Build(ctx, ctx.Cluster)
	if err != nil {
		return fmt.Errorf("failed to build inventory: %w", err)
	}

	content, err := inv.Render()
	if err != nil {
		return fmt.Errorf("failed to render inventory: %w", err)
	}

	a, err := artifact.WriteTemp(artifact.InventoryPrefix, []byte(content))
	if err != nil {
		return err
	}
	ctx.State.Artifacts.Add(a)
	ctx.State.Inventory = inv
	ctx.State.InventoryArtifact = a

	provisioning.LogArtifactWritten(ctx.Observer, p.Name(), "inventory", a.Path)
	ctx.Observer.Printf("[%s] Groups: %v", p.Name(), inv.Groups())
	return nil
}
