package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/logger"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/procexec"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/toolchain"
	hderrors "github.com/alexisbeaulieu97/hardhatdesk/pkg/errors"
)

func newProvisioner(runner procexec.Runner) *Provisioner {
	return &Provisioner{
		Runner:    runner,
		Toolchain: toolchain.Default(),
		Logger:    logger.Nop(),
	}
}

func isInitializer(cmd procexec.Command) bool {
	return cmd.Label == "init" || cmd.Label == "quickstart"
}

// failingInitializers fails both toolchain initializers and lets npm install succeed.
func failingInitializers(ctx context.Context, cmd procexec.Command) (procexec.Outcome, error) {
	if isInitializer(cmd) {
		return procexec.Outcome{ExitCode: 1, Stderr: "HH1: interactive prompt not supported"}, nil
	}
	return procexec.Outcome{Success: true}, nil
}

func TestCreateFallsBackToScaffolding(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "fresh", "project")
	runner := &procexec.ScriptedRunner{Handler: failingInitializers}

	res, err := newProvisioner(runner).Create(context.Background(), dir)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.True(t, res.Fallback)
	assert.Equal(t, "direct scaffolding", res.Strategy)
	assert.Contains(t, res.Message, "fallback")
	assert.Contains(t, res.Message, dir)

	for _, f := range []string{ManifestFile, ConfigFile, filepath.Join(ContractsDir, ExampleContract)} {
		assert.FileExists(t, filepath.Join(dir, f))
	}
	for _, d := range []string{"contracts", "test", "scripts"} {
		assert.DirExists(t, filepath.Join(dir, d))
	}
	assert.True(t, Detect(dir))
	assert.NoFileExists(t, filepath.Join(dir, gitignoreFile))

	config, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(config), `"http://127.0.0.1:8545"`)

	calls := runner.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "init", calls[0].Command.Label)
	assert.Equal(t, "quickstart", calls[1].Command.Label)
	assert.Equal(t, "install-deps", calls[2].Command.Label)
	assert.Equal(t, dir, calls[2].Command.Dir)
}

func TestCreatePrimaryInitializerSucceeds(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runner := &procexec.ScriptedRunner{Handler: func(ctx context.Context, cmd procexec.Command) (procexec.Outcome, error) {
		require.Equal(t, "true", cmd.Env["HARDHAT_CREATE_JAVASCRIPT_PROJECT_WITH_DEFAULTS"])
		touch("hardhat.config.js")(t, cmd.Dir)
		return procexec.Outcome{Success: true}, nil
	}}

	res, err := newProvisioner(runner).Create(context.Background(), dir)
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.Equal(t, "hardhat init", res.Strategy)
	assert.NotContains(t, res.Message, "fallback")
	assert.Equal(t, 1, runner.Launches())
}

func TestCreateQuickStartAfterInitLaunchFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runner := &procexec.ScriptedRunner{Handler: func(ctx context.Context, cmd procexec.Command) (procexec.Outcome, error) {
		if cmd.Label == "init" {
			return procexec.Outcome{}, hderrors.NewLaunchError(cmd.String(), errors.New("permission denied"))
		}
		touch("hardhat.config.ts")(t, cmd.Dir)
		return procexec.Outcome{Success: true}, nil
	}}

	res, err := newProvisioner(runner).Create(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "hardhat --init", res.Strategy)
	assert.False(t, res.Fallback)
	assert.Equal(t, 2, runner.Launches())
}

func TestCreateTreatsSilentInitializerAsFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runner := &procexec.ScriptedRunner{Handler: func(ctx context.Context, cmd procexec.Command) (procexec.Outcome, error) {
		// Exits zero after printing a prompt nobody answers.
		return procexec.Outcome{Success: true, Stdout: "? What do you want to do?"}, nil
	}}

	res, err := newProvisioner(runner).Create(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
}

func TestCreateDiscardsPartialStateBetweenStrategies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch("notes.txt")(t, dir)

	runner := &procexec.ScriptedRunner{Handler: func(ctx context.Context, cmd procexec.Command) (procexec.Outcome, error) {
		if isInitializer(cmd) {
			require.NoError(t, os.MkdirAll(filepath.Join(cmd.Dir, "node_modules", "hardhat"), 0o755))
			touch("half-written-"+cmd.Label+".json")(t, cmd.Dir)
			return procexec.Outcome{ExitCode: 1}, nil
		}
		return procexec.Outcome{Success: true}, nil
	}}

	_, err := newProvisioner(runner).Create(context.Background(), dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "half-written-init.json"))
	assert.NoFileExists(t, filepath.Join(dir, "half-written-quickstart.json"))
	assert.NoDirExists(t, filepath.Join(dir, "node_modules"))
}

func TestCreateRejectsExistingProject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch("hardhat.config.js")(t, dir)
	runner := &procexec.ScriptedRunner{}

	_, err := newProvisioner(runner).Create(context.Background(), dir)
	var preErr *hderrors.PreconditionError
	require.ErrorAs(t, err, &preErr)
	assert.Zero(t, runner.Launches())
}

func TestCreateDirectoryFailureIsFatal(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	runner := &procexec.ScriptedRunner{}

	_, err := newProvisioner(runner).Create(context.Background(), filepath.Join(blocker, "project"))
	var provErr *hderrors.ProvisionError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "create project directory", provErr.Step)
	assert.Zero(t, runner.Launches())
}

func TestCreateDependencyInstallFailureNamesStep(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runner := &procexec.ScriptedRunner{Handler: func(ctx context.Context, cmd procexec.Command) (procexec.Outcome, error) {
		if isInitializer(cmd) {
			return procexec.Outcome{ExitCode: 1}, nil
		}
		return procexec.Outcome{ExitCode: 1, Stderr: "npm ERR! network unreachable"}, nil
	}}

	_, err := newProvisioner(runner).Create(context.Background(), dir)
	var provErr *hderrors.ProvisionError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "install dependencies", provErr.Step)
	assert.Contains(t, err.Error(), "npm ERR! network unreachable")
	assert.Equal(t, 3, runner.Launches())
}

func TestCreateScaffoldWriteFailureNamesStep(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions are not enforced on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	t.Parallel()

	dir := t.TempDir()
	runner := &procexec.ScriptedRunner{Handler: func(ctx context.Context, cmd procexec.Command) (procexec.Outcome, error) {
		return procexec.Outcome{ExitCode: 1}, nil
	}}
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	_, err := newProvisioner(runner).Create(context.Background(), dir)
	var provErr *hderrors.ProvisionError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "write package.json", provErr.Step)
	assert.Equal(t, 2, runner.Launches())
}

func TestCreateWithGitInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runner := &procexec.ScriptedRunner{Handler: failingInitializers}
	p := newProvisioner(runner)
	p.GitInit = true

	_, err := p.Create(context.Background(), dir)
	require.NoError(t, err)

	_, err = git.PlainOpen(dir)
	require.NoError(t, err)
	ignore, err := os.ReadFile(filepath.Join(dir, gitignoreFile))
	require.NoError(t, err)
	assert.Contains(t, string(ignore), "node_modules")
}

func TestCreateUsesCustomStrategies(t *testing.T) {
	t.Parallel()

	var order []string
	p := newProvisioner(&procexec.ScriptedRunner{})
	p.Strategies = []Strategy{
		{Name: "first", Apply: func(ctx context.Context, dir string) (Verdict, error) {
			order = append(order, "first")
			return TryNext, errors.New("nope")
		}},
		{Name: "second", Apply: func(ctx context.Context, dir string) (Verdict, error) {
			order = append(order, "second")
			return Abort, hderrors.NewProvisionError("second step", errors.New("disk full"))
		}},
		{Name: "third", Apply: func(ctx context.Context, dir string) (Verdict, error) {
			order = append(order, "third")
			return Succeeded, nil
		}},
	}

	_, err := p.Create(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.True(t, strings.Contains(err.Error(), "disk full"))
}

func TestCreateExhaustedStrategies(t *testing.T) {
	t.Parallel()

	p := newProvisioner(&procexec.ScriptedRunner{})
	p.Strategies = []Strategy{
		{Name: "only", Apply: func(ctx context.Context, dir string) (Verdict, error) {
			return TryNext, errors.New("unavailable")
		}},
	}

	_, err := p.Create(context.Background(), t.TempDir())
	var provErr *hderrors.ProvisionError
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestVerdictString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "try-next", TryNext.String())
	assert.Equal(t, "abort", Abort.String())
	assert.Equal(t, "verdict(9)", Verdict(9).String())
}
