package config

import "time"

// Default values applied before a settings file is decoded.
const (
	DefaultToolchainCommand = "npx"
	DefaultInstaller        = "npm"
	DefaultNetworkName      = "localhost"
	DefaultRPCAddress       = "127.0.0.1:8545"
	DefaultProbeTimeout     = 2 * time.Second
	DefaultListenAddress    = "127.0.0.1:8787"
	DefaultRateLimitRPS     = 30
	DefaultRateLimitBurst   = 60
)

// Config is the full hardhatdesk settings document.
type Config struct {
	Toolchain ToolchainSettings `yaml:"toolchain"`
	Network   NetworkSettings   `yaml:"network"`
	Execution ExecutionSettings `yaml:"execution"`
	Provision ProvisionSettings `yaml:"provision"`
	Server    ServerSettings    `yaml:"server"`
	Log       LogSettings       `yaml:"log"`
}

// ToolchainSettings describes how the external toolchain is invoked.
type ToolchainSettings struct {
	Command   string   `yaml:"command" validate:"required,cmdname"`
	Args      []string `yaml:"args" validate:"omitempty,dive,required"`
	Installer string   `yaml:"installer" validate:"required,cmdname"`
	Network   string   `yaml:"network" validate:"required,min=1,max=64"`
}

// NetworkSettings configures the local RPC endpoint probe.
type NetworkSettings struct {
	RPCAddress   string        `yaml:"rpc_address" validate:"required,hostport"`
	ProbeTimeout time.Duration `yaml:"probe_timeout" validate:"min=0,max=60s"`
}

// ExecutionSettings bounds subprocess runtime. A zero Timeout disables the limit.
type ExecutionSettings struct {
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`
}

// ProvisionSettings tunes project creation.
type ProvisionSettings struct {
	GitInit bool `yaml:"git_init"`
}

// ServerSettings configures the JSON-RPC listener.
type ServerSettings struct {
	Listen         string  `yaml:"listen" validate:"required,hostport"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps" validate:"min=0"`
	RateLimitBurst int     `yaml:"rate_limit_burst" validate:"min=0"`
}

// LogSettings configures the process logger. HumanReadable is nil when unset so
// callers can fall back to terminal detection.
type LogSettings struct {
	Level         string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	HumanReadable *bool  `yaml:"human_readable,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Toolchain: ToolchainSettings{
			Command:   DefaultToolchainCommand,
			Args:      []string{"hardhat"},
			Installer: DefaultInstaller,
			Network:   DefaultNetworkName,
		},
		Network: NetworkSettings{
			RPCAddress:   DefaultRPCAddress,
			ProbeTimeout: DefaultProbeTimeout,
		},
		Server: ServerSettings{
			Listen:         DefaultListenAddress,
			RateLimitRPS:   DefaultRateLimitRPS,
			RateLimitBurst: DefaultRateLimitBurst,
		},
		Log: LogSettings{Level: "info"},
	}
}
