package tasks

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/logger"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/procexec"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/toolchain"
	hderrors "github.com/alexisbeaulieu97/hardhatdesk/pkg/errors"
)

// Executor runs the fixed catalogue of toolchain subcommands against a project.
type Executor struct {
	Runner    procexec.Runner
	Toolchain toolchain.Toolchain
	Logger    *logger.Logger
}

// Compile builds the project's contracts.
func (e *Executor) Compile(ctx context.Context, dir string) (string, error) {
	if err := requireDir(dir); err != nil {
		return "", err
	}
	return e.execute(ctx, e.Toolchain.Compile(dir), "Compilation finished successfully")
}

// Test runs the project's test suite.
func (e *Executor) Test(ctx context.Context, dir string) (string, error) {
	if err := requireDir(dir); err != nil {
		return "", err
	}
	return e.execute(ctx, e.Toolchain.Test(dir), "Tests passed")
}

// Deploy deploys the first deployment module in the project. A missing or
// empty modules directory is reported before anything is launched.
func (e *Executor) Deploy(ctx context.Context, dir string) (string, error) {
	if err := requireDir(dir); err != nil {
		return "", err
	}
	module, err := FindDeployModule(dir)
	if err != nil {
		return "", err
	}
	banner := fmt.Sprintf("Deployed %s to %s", module, e.Toolchain.Network)
	return e.execute(ctx, e.Toolchain.Deploy(dir, module), banner)
}

// RunTask runs an arbitrary task by name and returns its raw output.
func (e *Executor) RunTask(ctx context.Context, dir, name string, args []string) (string, error) {
	if err := requireDir(dir); err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", hderrors.NewPreconditionError("task", "task name is required")
	}
	if strings.HasPrefix(name, "-") {
		return "", hderrors.NewPreconditionError("task", fmt.Sprintf("task name %q looks like a flag", name))
	}
	return e.execute(ctx, e.Toolchain.Task(dir, name, args), "")
}

// execute runs cmd and turns a non-zero exit into a CommandError carrying both streams.
func (e *Executor) execute(ctx context.Context, cmd procexec.Command, banner string) (string, error) {
	log := e.Logger.With("task", cmd.Label, "dir", cmd.Dir)
	out, err := e.Runner.Run(ctx, cmd)
	if err != nil {
		log.Error(err, "task could not run")
		return "", err
	}
	if !out.Success {
		log.Warn("task failed", "exit_code", out.ExitCode)
		return "", hderrors.NewCommandError(cmd.String(), out.ExitCode, out.Stdout, out.Stderr)
	}

	log.Info("task succeeded")
	switch {
	case banner == "":
		return out.Stdout, nil
	case out.Stdout == "":
		return banner, nil
	default:
		return banner + "\n\n" + out.Stdout, nil
	}
}

func requireDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return hderrors.NewPreconditionError("project directory", "project path is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return hderrors.NewPreconditionError("project directory", fmt.Sprintf("%s does not exist", dir))
	}
	if !info.IsDir() {
		return hderrors.NewPreconditionError("project directory", fmt.Sprintf("%s is not a directory", dir))
	}
	return nil
}
