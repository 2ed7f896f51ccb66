// Package orchestration coordinates one ceph-ansible task.
//
// This package wires the platform adapters (SSH, Hetzner Cloud address
// lookup, S3 archive) to the run phases in internal/provisioning and defines
// their execution order. The phases do the actual work.
//
// # Workflow
//
// Runner.Run executes the following phases in order:
//  1. Validation - Pre-flight configuration validation
//  2. Facts - Interface, subnet and package family of every host
//  3. Inventory - Host records, host vars and the INI inventory
//  4. Playbook - The topology plan rendered as a playbook
//  5. Execute - Staging and running ceph-ansible on the first monitor
//  6. Health - Polling `ceph health` until the cluster converged
//
// The archive phase runs afterwards whatever the outcome, so the playbook
// output of a failed run is kept as well.
//
// # Usage
//
//	c, err := orchestration.BuildCluster(ctx, cfg, dial, resolver)
//	runner := orchestration.NewRunner(cfg, orchestration.WithObjectStore(store))
//	state, err := runner.Run(ctx, c)
package orchestration
