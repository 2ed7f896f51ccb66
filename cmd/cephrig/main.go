// Package main is the entry point for the cephrig CLI.
//
// cephrig deploys Ceph test clusters with ceph-ansible. It turns a list of
// targets and their roles into an ansible inventory and playbook, runs
// ceph-ansible from the first monitor and waits for the cluster to report
// HEALTH_OK.
//
// Commands: run, health, packages, inventory, plan, keygen.
//
// For detailed usage information, run:
//
//	cephrig --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/cephrig/cmd/cephrig/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	commands.SetVersionInfo(version, commit, date)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
