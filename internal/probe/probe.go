// Package probe answers "what does the local toolchain environment look like
// right now?". Every call re-probes; nothing is cached.
package probe

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/logger"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/procexec"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/project"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/toolchain"
)

// DefaultTimeout bounds the network reachability check.
const DefaultTimeout = 2 * time.Second

// Status is a point-in-time snapshot of the toolchain environment. Absent
// things are reported as false or nil, never as errors.
type Status struct {
	Installed        bool    `json:"installed"`
	Version          *string `json:"version"`
	ProjectDetected  bool    `json:"project_detected"`
	ProjectPath      *string `json:"project_path"`
	NetworkReachable bool    `json:"network_reachable"`
}

// Prober checks toolchain installation, project presence and node reachability.
type Prober struct {
	Runner     procexec.Runner
	Toolchain  toolchain.Toolchain
	Logger     *logger.Logger
	RPCAddress string
	Timeout    time.Duration
}

// Check builds a fresh Status. The version and reachability checks run
// concurrently; projectPath defaults to the current directory when empty.
func (p *Prober) Check(ctx context.Context, projectPath string) Status {
	var status Status
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		status.Installed, status.Version = p.checkInstalled(ctx)
	}()
	go func() {
		defer wg.Done()
		status.NetworkReachable = p.Reachable(ctx)
	}()

	dir := projectPath
	if dir == "" {
		dir = "."
	}
	if project.Detect(dir) {
		status.ProjectDetected = true
		status.ProjectPath = &dir
	}

	wg.Wait()
	return status
}

func (p *Prober) checkInstalled(ctx context.Context) (bool, *string) {
	out, err := p.Runner.Run(ctx, p.Toolchain.Version(""))
	if err != nil {
		p.Logger.Debug("toolchain not launchable", "error", err.Error())
		return false, nil
	}
	if !out.Success {
		p.Logger.Debug("toolchain version check failed", "exit_code", out.ExitCode, "output", procexec.PrimaryOutput(out))
		return false, nil
	}
	version := out.Stdout
	return true, &version
}

// Reachable reports whether a TCP connection to the RPC address succeeds within
// the timeout. Every failure, including cancellation, is just "false".
func (p *Prober) Reachable(ctx context.Context) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", p.RPCAddress)
	if err != nil {
		p.Logger.Debug("rpc endpoint unreachable", "address", p.RPCAddress, "error", err.Error())
		return false
	}
	_ = conn.Close()
	return true
}
