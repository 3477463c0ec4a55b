package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/logger"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/procexec"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/toolchain"
	hderrors "github.com/alexisbeaulieu97/hardhatdesk/pkg/errors"
)

// Verdict is a strategy's answer to "did the project get created?".
type Verdict int

const (
	// Succeeded ends provisioning.
	Succeeded Verdict = iota
	// TryNext discards the strategy's partial output and moves on.
	TryNext
	// Abort stops provisioning and returns the strategy's error.
	Abort
)

func (v Verdict) String() string {
	switch v {
	case Succeeded:
		return "succeeded"
	case TryNext:
		return "try-next"
	case Abort:
		return "abort"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Strategy is one way of creating a project in an existing, writable directory.
type Strategy struct {
	Name     string
	Fallback bool
	Apply    func(ctx context.Context, dir string) (Verdict, error)
}

// Result describes a created project.
type Result struct {
	Path     string `json:"path"`
	Strategy string `json:"strategy"`
	Fallback bool   `json:"fallback"`
	Message  string `json:"message"`
}

// Provisioner creates projects by trying its strategies in order.
type Provisioner struct {
	Runner    procexec.Runner
	Toolchain toolchain.Toolchain
	Logger    *logger.Logger
	// RPCURL is written into the scaffolded configuration's localhost network.
	RPCURL string
	// GitInit initialises a git repository after direct scaffolding.
	GitInit bool
	// Strategies overrides the default chain when non-empty.
	Strategies []Strategy
}

// DefaultStrategies returns the initializer chain: the toolchain's own
// initializer, its quick-start variant, then direct scaffolding.
func (p *Provisioner) DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "hardhat init", Apply: p.initializer(p.Toolchain.Init)},
		{Name: "hardhat --init", Apply: p.initializer(p.Toolchain.QuickStart)},
		{Name: "direct scaffolding", Fallback: true, Apply: p.scaffold},
	}
}

// Create provisions a project at path. The directory is created if needed; a
// directory that already holds a project is rejected before anything runs.
func (p *Provisioner) Create(ctx context.Context, path string) (*Result, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, hderrors.NewProvisionError("create project directory", err)
	}
	if Detect(path) {
		return nil, hderrors.NewPreconditionError("project", fmt.Sprintf("%s already contains a Hardhat project", path))
	}

	strategies := p.Strategies
	if len(strategies) == 0 {
		strategies = p.DefaultStrategies()
	}

	log := p.Logger.With("path", path)
	var lastErr error
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		before, err := snapshot(path)
		if err != nil {
			return nil, hderrors.NewProvisionError("inspect project directory", err)
		}

		log.Info("trying project strategy", "strategy", s.Name)
		verdict, err := s.Apply(ctx, path)
		switch verdict {
		case Succeeded:
			res := &Result{Path: path, Strategy: s.Name, Fallback: s.Fallback}
			if s.Fallback {
				res.Message = fmt.Sprintf("Hardhat project created at %s via fallback (%s); the toolchain initializers did not complete", path, s.Name)
			} else {
				res.Message = fmt.Sprintf("Hardhat project created at %s via %s", path, s.Name)
			}
			log.Info("project created", "strategy", s.Name, "fallback", s.Fallback)
			return res, nil
		case Abort:
			log.Error(err, "project strategy aborted", "strategy", s.Name)
			return nil, err
		default:
			log.Warn("project strategy failed, trying next", "strategy", s.Name, "error", fmt.Sprint(err))
			lastErr = err
			if rbErr := rollback(path, before); rbErr != nil {
				return nil, hderrors.NewProvisionError("discard partial project from "+s.Name, rbErr)
			}
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no strategies configured")
	}
	return nil, hderrors.NewProvisionError("create project", lastErr)
}

// initializer adapts a toolchain initializer into a strategy. Exiting zero
// without leaving a configuration file behind counts as failure, which is how an
// initializer that stopped at an interactive prompt shows up.
func (p *Provisioner) initializer(build func(dir string) procexec.Command) func(context.Context, string) (Verdict, error) {
	return func(ctx context.Context, dir string) (Verdict, error) {
		cmd := build(dir)
		out, err := p.Runner.Run(ctx, cmd)
		if err != nil {
			return TryNext, err
		}
		if !out.Success {
			return TryNext, hderrors.NewCommandError(cmd.String(), out.ExitCode, out.Stdout, out.Stderr)
		}
		if !Detect(dir) {
			return TryNext, fmt.Errorf("%s exited without creating a Hardhat configuration", cmd.String())
		}
		return Succeeded, nil
	}
}

func snapshot(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		names[e.Name()] = struct{}{}
	}
	return names, nil
}

// rollback removes every entry in dir that is not in keep.
func rollback(dir string, keep map[string]struct{}) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, ok := keep[e.Name()]; ok {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
