// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/cephrig/cmd/cephrig/handlers"
)

// Root returns the root command for the cephrig CLI.
//
// The root command serves as the entry point and parent for all subcommands.
// It provides basic CLI metadata and organizes the command hierarchy.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cephrig",
		Short:         "Deploy Ceph test clusters with ceph-ansible",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Task commands
	cmd.AddCommand(Run())
	cmd.AddCommand(Health())
	cmd.AddCommand(Packages())

	// Document commands
	cmd.AddCommand(Inventory())
	cmd.AddCommand(Plan())

	// Utility commands
	cmd.AddCommand(Keygen())
	cmd.AddCommand(Version())

	return cmd
}

// bindOptions registers the flags shared by every command that reads the
// configuration.
func bindOptions(cmd *cobra.Command, opts *handlers.Options) {
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: cephrig.yaml)")
	cmd.Flags().StringVar(&opts.LogFormat, "log-format", handlers.LogFormatText, "Log format: text or json")
}
