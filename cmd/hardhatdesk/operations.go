package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/app/orchestrator"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/tui"
)

func newStatusCmd(flags *rootFlags) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report toolchain installation, project and local network state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(cmd, flags)
			if err != nil {
				return err
			}
			status := app.Service.ProbeStatus(cmd.Context(), projectPath)
			if flags.jsonOutput {
				return writeJSON(cmd, status)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderStatus(status))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "path", "p", "", "Project directory to inspect (defaults to the current directory)")
	return cmd
}

func newInstallCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the Hardhat CLI globally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, flags, "Install Hardhat", func(ctx context.Context, svc *orchestrator.Service) (string, error) {
				return svc.InstallToolchain(ctx)
			})
		},
	}
}

// newPathCmd builds a command whose only argument is the project directory.
func newPathCmd(flags *rootFlags, use, short, label string, op func(*orchestrator.Service) func(context.Context, string) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <path>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, flags, label, func(ctx context.Context, svc *orchestrator.Service) (string, error) {
				return op(svc)(ctx, args[0])
			})
		},
	}
}

func newCreateCmd(flags *rootFlags) *cobra.Command {
	return newPathCmd(flags, "create", "Create a Hardhat project, scaffolding it directly if the initializers fail", "Create project",
		func(s *orchestrator.Service) func(context.Context, string) (string, error) { return s.CreateProject })
}

func newNodeCmd(flags *rootFlags) *cobra.Command {
	return newPathCmd(flags, "node", "Start a local Hardhat network in the background", "Start network",
		func(s *orchestrator.Service) func(context.Context, string) (string, error) { return s.StartNetwork })
}

func newCompileCmd(flags *rootFlags) *cobra.Command {
	return newPathCmd(flags, "compile", "Compile the project's contracts", "Compile",
		func(s *orchestrator.Service) func(context.Context, string) (string, error) { return s.Compile })
}

func newTestCmd(flags *rootFlags) *cobra.Command {
	return newPathCmd(flags, "test", "Run the project's tests", "Test",
		func(s *orchestrator.Service) func(context.Context, string) (string, error) { return s.Test })
}

func newDeployCmd(flags *rootFlags) *cobra.Command {
	return newPathCmd(flags, "deploy", "Deploy the first Ignition module to the configured network", "Deploy",
		func(s *orchestrator.Service) func(context.Context, string) (string, error) { return s.Deploy })
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <path> <task> [args...]",
		Short: "Run a Hardhat task by name",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := "Task " + args[1]
			return runOperation(cmd, flags, label, func(ctx context.Context, svc *orchestrator.Service) (string, error) {
				return svc.RunTask(ctx, args[0], args[1], args[2:])
			})
		},
	}
}

func newConsoleCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "console <path> <expression>",
		Short: "Evaluate an expression inside the Hardhat runtime",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, flags, "Evaluate", func(ctx context.Context, svc *orchestrator.Service) (string, error) {
				return svc.RunConsoleExpression(ctx, args[0], args[1])
			})
		},
	}
}

func newContractsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "contracts <path>",
		Short: "List contract sources and whether they are compiled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(cmd, flags)
			if err != nil {
				return err
			}
			contracts, err := app.Service.ListContracts(cmd.Context(), args[0])
			if err != nil {
				return reportFailure(cmd, flags, "List contracts", err)
			}
			if flags.jsonOutput {
				return writeJSON(cmd, contracts)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderContracts(contracts))
			return nil
		},
	}
}
