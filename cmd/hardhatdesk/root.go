package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	verbose    bool
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "hardhatdesk",
		Short:         "hardhatdesk drives a local Hardhat toolchain for the desktop app",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to settings file (defaults are used when omitted)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging and stream subprocess output")
	cmd.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "Print results as JSON")

	cmd.AddCommand(newStatusCmd(flags))
	cmd.AddCommand(newInstallCmd(flags))
	cmd.AddCommand(newCreateCmd(flags))
	cmd.AddCommand(newNodeCmd(flags))
	cmd.AddCommand(newCompileCmd(flags))
	cmd.AddCommand(newTestCmd(flags))
	cmd.AddCommand(newDeployCmd(flags))
	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newConsoleCmd(flags))
	cmd.AddCommand(newContractsCmd(flags))
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
