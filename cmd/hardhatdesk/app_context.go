package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/app/orchestrator"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/config"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/logger"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/metrics"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/procexec"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/tui"
)

// processRunner replaces the exec runner when set; tests substitute a scripted one.
var processRunner procexec.Runner

// AppContext bundles long-lived services created per invocation.
type AppContext struct {
	Config  *config.Config
	Logger  *logger.Logger
	Metrics *metrics.Recorder
	Service *orchestrator.Service
}

func newAppContext(cmd *cobra.Command, flags *rootFlags) (*AppContext, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if flags.verbose {
		level = "debug"
	}
	stderr := cmd.ErrOrStderr()
	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: humanReadable(cfg, stderr),
		Writer:        stderr,
		Component:     "hardhatdesk",
	})
	if err != nil {
		return nil, err
	}

	rec := metrics.New()
	runner := processRunner
	if runner == nil {
		execRunner := &procexec.ExecRunner{
			Logger:  log.With("component", "procexec"),
			Metrics: rec,
			Timeout: cfg.Execution.Timeout,
		}
		if flags.verbose && !flags.jsonOutput {
			execRunner.Echo = stderr
		}
		runner = execRunner
	}

	return &AppContext{
		Config:  cfg,
		Logger:  log,
		Metrics: rec,
		Service: orchestrator.NewService(cfg, orchestrator.Deps{Runner: runner, Logger: log, Metrics: rec}),
	}, nil
}

func humanReadable(cfg *config.Config, w io.Writer) bool {
	if cfg.Log.HumanReadable != nil {
		return *cfg.Log.HumanReadable
	}
	f, ok := w.(*os.File)
	return ok && tui.IsTerminal(f)
}
