package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/cephrig/internal/topology"
)

// Inventory prints the inventory that a run would generate. Facts are
// gathered from the targets, but nothing is changed on them.
func Inventory(ctx context.Context, opts Options) error {
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	state, err := s.runner.Documents(ctx, s.cluster)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, string(state.InventoryArtifact.Content))
	return nil
}

// Plan prints the playbook rendered from the topology plan. It needs no
// connection to the targets.
func Plan(opts Options) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	out, err := topology.RenderPlan(cfg.CephAnsible.Playbook)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, string(out))
	return nil
}
