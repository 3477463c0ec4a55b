package orchestrator

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/config"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/logger"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/metrics"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/probe"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/procexec"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/project"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/tasks"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/toolchain"
	hderrors "github.com/alexisbeaulieu97/hardhatdesk/pkg/errors"
)

// Re-export result types so transports only import this package.
type (
	Status   = probe.Status
	Contract = project.Contract
)

// Deps are the long-lived collaborators shared by every operation.
type Deps struct {
	Runner  procexec.Runner
	Logger  *logger.Logger
	Metrics *metrics.Recorder
}

// Service exposes every toolchain operation the desk offers. Each call is
// independent; the service holds no per-project state.
type Service struct {
	runner      procexec.Runner
	log         *logger.Logger
	toolchain   toolchain.Toolchain
	prober      *probe.Prober
	provisioner *project.Provisioner
	executor    *tasks.Executor
	console     *tasks.Console
}

// NewService wires the components from cfg. A nil Runner defaults to an
// ExecRunner bounded by cfg.Execution.Timeout.
func NewService(cfg *config.Config, deps Deps) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	runner := deps.Runner
	if runner == nil {
		runner = &procexec.ExecRunner{
			Logger:  log.With("component", "procexec"),
			Metrics: deps.Metrics,
			Timeout: cfg.Execution.Timeout,
		}
	}

	tc := toolchain.New(cfg.Toolchain)
	return &Service{
		runner:    runner,
		log:       log,
		toolchain: tc,
		prober: &probe.Prober{
			Runner:     runner,
			Toolchain:  tc,
			Logger:     log.With("component", "probe"),
			RPCAddress: cfg.Network.RPCAddress,
			Timeout:    cfg.Network.ProbeTimeout,
		},
		provisioner: &project.Provisioner{
			Runner:    runner,
			Toolchain: tc,
			Logger:    log.With("component", "provision"),
			RPCURL:    "http://" + cfg.Network.RPCAddress,
			GitInit:   cfg.Provision.GitInit,
		},
		executor: &tasks.Executor{
			Runner:    runner,
			Toolchain: tc,
			Logger:    log.With("component", "tasks"),
		},
		console: &tasks.Console{
			Runner:    runner,
			Toolchain: tc,
			Logger:    log.With("component", "console"),
		},
	}
}

// ProbeStatus reports installation, project and network state. It never fails.
func (s *Service) ProbeStatus(ctx context.Context, projectPath string) Status {
	return s.prober.Check(ctx, projectPath)
}

// InstallToolchain installs the toolchain globally.
func (s *Service) InstallToolchain(ctx context.Context) (string, error) {
	cmd := s.toolchain.Install()
	out, err := s.runner.Run(ctx, cmd)
	if err != nil {
		return "", err
	}
	if !out.Success {
		return "", hderrors.NewCommandError(cmd.String(), out.ExitCode, out.Stdout, out.Stderr)
	}
	msg := "Hardhat installed successfully"
	if out.Stdout != "" {
		msg += "\n\n" + out.Stdout
	}
	return msg, nil
}

// CreateProject provisions a project at path and returns a message saying
// which path produced it.
func (s *Service) CreateProject(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", hderrors.NewPreconditionError("project directory", "project path is required")
	}
	res, err := s.provisioner.Create(ctx, path)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}

// StartNetwork launches a local node in the background and returns without
// waiting for it. Callers poll ProbeStatus for reachability.
func (s *Service) StartNetwork(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", hderrors.NewPreconditionError("project directory", "project path is required")
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return "", hderrors.NewPreconditionError("project directory", fmt.Sprintf("%s is not an existing directory", path))
	}
	if s.prober.Reachable(ctx) {
		return fmt.Sprintf("Local network already running at %s", s.prober.RPCAddress), nil
	}

	pid, err := s.runner.SpawnDetached(s.toolchain.Node(path))
	if err != nil {
		return "", err
	}
	s.log.Info("local network started", "pid", pid, "dir", path)
	return fmt.Sprintf("Local network starting (pid %d); it will listen on %s", pid, s.prober.RPCAddress), nil
}

// Compile compiles the project's contracts.
func (s *Service) Compile(ctx context.Context, path string) (string, error) {
	return s.executor.Compile(ctx, path)
}

// Test runs the project's tests.
func (s *Service) Test(ctx context.Context, path string) (string, error) {
	return s.executor.Test(ctx, path)
}

// Deploy deploys the project's first deployment module.
func (s *Service) Deploy(ctx context.Context, path string) (string, error) {
	return s.executor.Deploy(ctx, path)
}

// RunTask runs a named task with arguments.
func (s *Service) RunTask(ctx context.Context, path, taskName string, args []string) (string, error) {
	return s.executor.RunTask(ctx, path, taskName, args)
}

// RunConsoleExpression evaluates expression inside the toolchain runtime.
func (s *Service) RunConsoleExpression(ctx context.Context, path, expression string) (string, error) {
	return s.console.Evaluate(ctx, path, expression)
}

// ListContracts reports the project's contract sources and their compiled state.
func (s *Service) ListContracts(_ context.Context, path string) ([]Contract, error) {
	if strings.TrimSpace(path) == "" {
		return nil, hderrors.NewPreconditionError("project directory", "project path is required")
	}
	return project.ListContracts(path)
}
