package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/logger"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/metrics"
	hderrors "github.com/alexisbeaulieu97/hardhatdesk/pkg/errors"
)

// waitDelay bounds how long Run keeps reading output from grandchildren after
// the direct child has been killed.
const waitDelay = 5 * time.Second

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string
	// Label names the invocation in logs and metrics, e.g. "compile".
	Label string
}

// String renders the command line for messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

func (c Command) label() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}

// Outcome is the captured result of a process that ran to completion.
type Outcome struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner launches external processes.
//
// Run blocks until exit. A process that starts and exits non-zero yields
// Outcome{Success: false} and a nil error; an error is returned only when the
// process could not be launched (*errors.LaunchError) or was cut short by the
// context (*errors.CommandError wrapping the context error).
//
// SpawnDetached starts a long-lived process in its own session and returns its
// pid without waiting.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Outcome, error)
	SpawnDetached(cmd Command) (int, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	Logger  *logger.Logger
	Metrics *metrics.Recorder
	// Timeout bounds every Run call. Zero means no limit.
	Timeout time.Duration
	// Echo additionally receives both output streams as they are produced.
	Echo io.Writer
}

var _ Runner = (*ExecRunner)(nil)

// Run executes the command and captures stdout and stderr in full.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = BuildEnv(c.Env)
	cmd.WaitDelay = waitDelay

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	if r.Echo != nil {
		cmd.Stdout = io.MultiWriter(&stdoutBuf, r.Echo)
		cmd.Stderr = io.MultiWriter(&stderrBuf, r.Echo)
	}

	r.Logger.Debug("running command", "command", c.String(), "dir", c.Dir)
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	out := Outcome{
		Stdout: strings.TrimSpace(stdoutBuf.String()),
		Stderr: strings.TrimSpace(stderrBuf.String()),
	}

	if err == nil {
		out.Success = true
		r.Metrics.ObserveProcess(c.label(), metrics.OutcomeSuccess, elapsed)
		r.Logger.Debug("command finished", "command", c.String(), "duration_ms", elapsed.Milliseconds())
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		r.Metrics.ObserveProcess(c.label(), metrics.OutcomeFailure, elapsed)
		if ctxErr := ctx.Err(); ctxErr != nil {
			r.Logger.Warn("command interrupted", "command", c.String(), "reason", ctxErr.Error())
			return out, &hderrors.CommandError{
				Command:  c.String(),
				ExitCode: out.ExitCode,
				Stdout:   out.Stdout,
				Stderr:   out.Stderr,
				Err:      ctxErr,
			}
		}
		r.Logger.Debug("command exited non-zero", "command", c.String(), "exit_code", out.ExitCode)
		return out, nil
	}

	r.Metrics.ObserveProcess(c.label(), metrics.OutcomeLaunchError, elapsed)
	r.Logger.Warn("command could not be launched", "command", c.String(), "error", err.Error())
	return out, hderrors.NewLaunchError(c.String(), err)
}

// SpawnDetached starts the command in a new session so it survives the caller,
// and reaps it in the background once it exits.
func (r *ExecRunner) SpawnDetached(c Command) (int, error) {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = BuildEnv(c.Env)
	configureDetached(cmd)

	if err := cmd.Start(); err != nil {
		r.Metrics.ObserveProcess(c.label(), metrics.OutcomeLaunchError, 0)
		r.Logger.Warn("detached command could not be launched", "command", c.String(), "error", err.Error())
		return 0, hderrors.NewLaunchError(c.String(), err)
	}

	pid := cmd.Process.Pid
	r.Metrics.ObserveProcess(c.label(), metrics.OutcomeDetached, 0)
	r.Logger.Info("spawned detached command", "command", c.String(), "dir", c.Dir, "pid", pid)

	go func() {
		err := cmd.Wait()
		r.Logger.Debug("detached command exited", "pid", pid, "error", fmt.Sprint(err))
	}()

	return pid, nil
}

// BuildEnv returns the current environment with the overrides appended in key order.
func BuildEnv(overrides map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, overrides[k]))
	}
	return env
}

// PrimaryOutput returns stderr if present, otherwise stdout.
func PrimaryOutput(out Outcome) string {
	if out.Stderr != "" {
		return out.Stderr
	}
	return out.Stdout
}
