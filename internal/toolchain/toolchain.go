// Package toolchain knows how to spell every Hardhat invocation the desk uses.
// It builds procexec.Commands and never runs them.
package toolchain

import (
	"github.com/alexisbeaulieu97/hardhatdesk/internal/config"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/procexec"
)

// nonInteractiveEnv forces project initializers onto their default answers.
var nonInteractiveEnv = map[string]string{
	"HARDHAT_CREATE_JAVASCRIPT_PROJECT_WITH_DEFAULTS": "true",
	"HARDHAT_DISABLE_TELEMETRY_PROMPT":                "true",
	"CI":                                              "true",
}

// Toolchain describes how to reach the Hardhat CLI and its package manager.
type Toolchain struct {
	// Command and BaseArgs prefix every Hardhat invocation, e.g. "npx" + ["hardhat"].
	Command  string
	BaseArgs []string
	// Installer is the package manager used for global and project installs.
	Installer string
	// Network is passed to --network for tasks that talk to a node.
	Network string
}

// New builds a Toolchain from settings.
func New(cfg config.ToolchainSettings) Toolchain {
	return Toolchain{
		Command:   cfg.Command,
		BaseArgs:  append([]string(nil), cfg.Args...),
		Installer: cfg.Installer,
		Network:   cfg.Network,
	}
}

// Default is the npx-based Hardhat toolchain against the localhost network.
func Default() Toolchain {
	return New(config.Default().Toolchain)
}

func (t Toolchain) hardhat(label, dir string, args ...string) procexec.Command {
	full := make([]string, 0, len(t.BaseArgs)+len(args))
	full = append(full, t.BaseArgs...)
	full = append(full, args...)
	return procexec.Command{Name: t.Command, Args: full, Dir: dir, Label: label}
}

// Version reports the installed CLI version.
func (t Toolchain) Version(dir string) procexec.Command {
	return t.hardhat("version", dir, "--version")
}

// Init runs the toolchain's own project initializer non-interactively.
func (t Toolchain) Init(dir string) procexec.Command {
	cmd := t.hardhat("init", dir, "init")
	cmd.Env = copyEnv(nonInteractiveEnv)
	return cmd
}

// QuickStart runs the alternate initializer entry point non-interactively.
func (t Toolchain) QuickStart(dir string) procexec.Command {
	cmd := t.hardhat("quickstart", dir, "--init")
	cmd.Env = copyEnv(nonInteractiveEnv)
	return cmd
}

// Compile builds every contract in the project.
func (t Toolchain) Compile(dir string) procexec.Command {
	return t.hardhat("compile", dir, "compile")
}

// Test runs the project's test suite.
func (t Toolchain) Test(dir string) procexec.Command {
	return t.hardhat("test", dir, "test")
}

// Node starts a local development network.
func (t Toolchain) Node(dir string) procexec.Command {
	return t.hardhat("node", dir, "node")
}

// Deploy deploys an Ignition module against the configured network.
func (t Toolchain) Deploy(dir, module string) procexec.Command {
	return t.hardhat("deploy", dir, "ignition", "deploy", module, "--network", t.Network)
}

// Run executes a script inside the Hardhat runtime against the configured network.
func (t Toolchain) Run(dir, script string) procexec.Command {
	return t.hardhat("run", dir, "run", script, "--network", t.Network)
}

// Task runs an arbitrary task by name.
func (t Toolchain) Task(dir, name string, args []string) procexec.Command {
	full := append([]string{name}, args...)
	return t.hardhat("task", dir, full...)
}

// Install installs the Hardhat CLI globally.
func (t Toolchain) Install() procexec.Command {
	return procexec.Command{Name: t.Installer, Args: []string{"install", "-g", "hardhat"}, Label: "install"}
}

// InstallDeps installs the dependencies declared in the project manifest.
func (t Toolchain) InstallDeps(dir string) procexec.Command {
	return procexec.Command{Name: t.Installer, Args: []string{"install"}, Dir: dir, Label: "install-deps"}
}

func copyEnv(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
