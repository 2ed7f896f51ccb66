package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/cephrig/internal/config"
	"github.com/imamik/cephrig/internal/health"
	"github.com/imamik/cephrig/internal/provisioning"
)

// Run executes the ceph-ansible task described by the config:
//  1. Loads the config and opens an SSH connection to every target
//  2. Generates the inventory and playbook
//  3. Runs ceph-ansible on the first monitor
//  4. Waits for the cluster to report a healthy status
//
// A summary is printed whether or not the run succeeded.
func Run(ctx context.Context, opts Options) error {
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	state, runErr := s.runner.Run(ctx, s.cluster)
	printRunSummary(s.cfg, state, runErr)
	return runErr
}

func printRunSummary(cfg *config.Config, state *provisioning.State, runErr error) {
	p := newPrinter()
	name := cfg.Name
	if name == "" {
		name = "ceph-ansible"
	}
	p.title(fmt.Sprintf("cephrig run: %s", name))

	result, style := resultStyle(runErr)
	p.rowStyled("Result", result, style)
	if state != nil {
		if ex := state.Execution; ex != nil {
			p.row("Installer", ex.Installer.Name())
			p.row("Mode", ex.Mode.String())
		}
		if state.Inventory != nil {
			p.row("Groups", strings.Join(state.Inventory.Groups(), ", "))
		}
		if state.HealthPolled {
			status := health.Status(state.HealthStatus)
			p.rowStyled("Health", string(status), statusStyle(status))
		}
	}
	if runErr != nil {
		p.rowStyled("Error", runErr.Error(), failStyle)
	}
	p.flush()
}
