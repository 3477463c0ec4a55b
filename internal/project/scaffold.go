package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	hderrors "github.com/alexisbeaulieu97/hardhatdesk/pkg/errors"
)

// Files written by direct scaffolding.
const (
	ManifestFile    = "package.json"
	ConfigFile      = "hardhat.config.js"
	ExampleContract = "Counter.sol"
	gitignoreFile   = ".gitignore"
)

// ScaffoldDirs are created empty (apart from the example contract).
var ScaffoldDirs = []string{ContractsDir, "test", "scripts"}

const defaultRPCURL = "http://127.0.0.1:8545"

const manifestTemplate = `{
  "name": "hardhat-project",
  "version": "1.0.0",
  "private": true,
  "scripts": {
    "compile": "hardhat compile",
    "test": "hardhat test",
    "node": "hardhat node"
  },
  "devDependencies": {
    "@nomicfoundation/hardhat-toolbox": "^5.0.0",
    "hardhat": "^2.22.0"
  }
}
`

const configTemplate = `require("@nomicfoundation/hardhat-toolbox");

/** @type import('hardhat/config').HardhatUserConfig */
module.exports = {
  solidity: "0.8.24",
  networks: {
    localhost: {
      url: %q,
    },
  },
};
`

const contractTemplate = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.24;

contract Counter {
    uint256 public count;

    event Incremented(uint256 newCount);

    function increment() public {
        count += 1;
        emit Incremented(count);
    }
}
`

const gitignoreTemplate = `node_modules
.env
coverage
coverage.json
typechain
typechain-types
cache
artifacts
`

type scaffoldStep struct {
	name string
	run  func(dir string) error
}

// scaffold writes the minimal project by hand and installs its dependencies.
// Every failure here is fatal and names the step.
func (p *Provisioner) scaffold(ctx context.Context, dir string) (Verdict, error) {
	rpcURL := p.RPCURL
	if rpcURL == "" {
		rpcURL = defaultRPCURL
	}

	steps := []scaffoldStep{
		{name: "write " + ManifestFile, run: writeFile(ManifestFile, manifestTemplate)},
		{name: "write " + ConfigFile, run: writeFile(ConfigFile, fmt.Sprintf(configTemplate, rpcURL))},
	}
	for _, d := range ScaffoldDirs {
		d := d
		steps = append(steps, scaffoldStep{name: "create " + d + " directory", run: func(dir string) error {
			return os.MkdirAll(filepath.Join(dir, d), 0o755)
		}})
	}
	steps = append(steps, scaffoldStep{
		name: "write example contract",
		run:  writeFile(filepath.Join(ContractsDir, ExampleContract), contractTemplate),
	})

	for _, step := range steps {
		if err := step.run(dir); err != nil {
			return Abort, hderrors.NewProvisionError(step.name, err)
		}
	}

	cmd := p.Toolchain.InstallDeps(dir)
	out, err := p.Runner.Run(ctx, cmd)
	if err != nil {
		return Abort, hderrors.NewProvisionError("install dependencies", err)
	}
	if !out.Success {
		return Abort, hderrors.NewProvisionError("install dependencies",
			hderrors.NewCommandError(cmd.String(), out.ExitCode, out.Stdout, out.Stderr))
	}

	if p.GitInit {
		if err := initRepository(dir); err != nil {
			return Abort, hderrors.NewProvisionError("initialize git repository", err)
		}
	}

	return Succeeded, nil
}

func writeFile(rel, contents string) func(dir string) error {
	return func(dir string) error {
		return os.WriteFile(filepath.Join(dir, rel), []byte(contents), 0o644)
	}
}

// initRepository creates a git repository with an ignore file for build output.
// An existing repository is left alone.
func initRepository(dir string) error {
	if _, err := git.PlainOpen(dir); err == nil {
		return nil
	}
	if _, err := git.PlainInit(dir, false); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, gitignoreFile), []byte(gitignoreTemplate), 0o644)
}
