package procexec

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/metrics"
	hderrors "github.com/alexisbeaulieu97/hardhatdesk/pkg/errors"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}
}

func TestRun_Success(t *testing.T) {
	skipOnWindows(t)

	r := &ExecRunner{}
	out, err := r.Run(context.Background(), Command{Name: "echo", Args: []string{"hello world"}})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "hello world", out.Stdout)
	assert.Equal(t, "", out.Stderr)
	assert.Zero(t, out.ExitCode)
}

func TestRun_NonZeroExitIsNotAnError(t *testing.T) {
	skipOnWindows(t)

	r := &ExecRunner{}
	out, err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo 'partial output'; echo 'error message' >&2; exit 3"},
	})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, 3, out.ExitCode)
	assert.Equal(t, "partial output", out.Stdout)
	assert.Equal(t, "error message", out.Stderr)
}

func TestRun_CommandNotFoundIsLaunchError(t *testing.T) {
	r := &ExecRunner{}
	out, err := r.Run(context.Background(), Command{Name: "this-command-does-not-exist"})
	require.Error(t, err)

	var launchErr *hderrors.LaunchError
	require.ErrorAs(t, err, &launchErr)
	assert.Equal(t, "this-command-does-not-exist", launchErr.Command)
	assert.False(t, out.Success)
}

func TestRun_UsesWorkingDirectory(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0o644))

	r := &ExecRunner{}
	out, err := r.Run(context.Background(), Command{Name: "ls", Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, "marker.txt", out.Stdout)
}

func TestRun_AppliesEnvironmentOverrides(t *testing.T) {
	skipOnWindows(t)

	r := &ExecRunner{}
	out, err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "printf '%s' \"$HARDHATDESK_TEST_VALUE\""},
		Env:  map[string]string{"HARDHATDESK_TEST_VALUE": "forced"},
	})
	require.NoError(t, err)
	assert.Equal(t, "forced", out.Stdout)
}

func TestRun_TimeoutKeepsCapturedOutput(t *testing.T) {
	skipOnWindows(t)

	r := &ExecRunner{Timeout: 200 * time.Millisecond}
	start := time.Now()
	out, err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo started; exec sleep 5"},
	})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)

	var cmdErr *hderrors.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "started", out.Stdout)
	assert.False(t, out.Success)
}

func TestRun_CancelledContextDoesNotLaunch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := metrics.New()
	r := &ExecRunner{Metrics: m}
	_, err := r.Run(ctx, Command{Name: "echo", Label: "echo"})
	require.ErrorIs(t, err, context.Canceled)
	count, gatherErr := testutil.GatherAndCount(m.Registry(), "hardhatdesk_process_launches_total")
	require.NoError(t, gatherErr)
	assert.Equal(t, 0, count)
}

func TestRun_EchoReceivesOutput(t *testing.T) {
	skipOnWindows(t)

	var echo bytes.Buffer
	r := &ExecRunner{Echo: &echo}
	out, err := r.Run(context.Background(), Command{Name: "echo", Args: []string{"streamed"}})
	require.NoError(t, err)
	assert.Equal(t, "streamed", out.Stdout)
	assert.Equal(t, "streamed\n", echo.String())
}

func TestRun_OutputTrimming(t *testing.T) {
	skipOnWindows(t)

	r := &ExecRunner{}
	out, err := r.Run(context.Background(), Command{Name: "printf", Args: []string{"hello\nworld\n\t"}})
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", out.Stdout)
}

func TestRun_RecordsMetrics(t *testing.T) {
	skipOnWindows(t)

	m := metrics.New()
	r := &ExecRunner{Metrics: m}
	_, err := r.Run(context.Background(), Command{Name: "true", Label: "probe"})
	require.NoError(t, err)
	_, err = r.Run(context.Background(), Command{Name: "false", Label: "probe"})
	require.NoError(t, err)
	_, err = r.Run(context.Background(), Command{Name: "this-command-does-not-exist", Label: "probe"})
	require.Error(t, err)

	count, err := testutil.GatherAndCount(m.Registry(), "hardhatdesk_process_launches_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSpawnDetached_ReturnsImmediately(t *testing.T) {
	skipOnWindows(t)

	r := &ExecRunner{}
	start := time.Now()
	pid, err := r.SpawnDetached(Command{Name: "sleep", Args: []string{"5"}})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	require.Greater(t, pid, 0)

	proc, err := os.FindProcess(pid)
	require.NoError(t, err)
	require.NoError(t, proc.Signal(syscall.Signal(0)))
	require.NoError(t, proc.Kill())
}

func TestSpawnDetached_LaunchError(t *testing.T) {
	r := &ExecRunner{}
	pid, err := r.SpawnDetached(Command{Name: "this-command-does-not-exist"})
	require.Error(t, err)
	assert.Zero(t, pid)

	var launchErr *hderrors.LaunchError
	require.ErrorAs(t, err, &launchErr)
}

func TestBuildEnvAppendsOverridesInOrder(t *testing.T) {
	env := BuildEnv(map[string]string{"B_VAR": "2", "A_VAR": "1"})
	require.GreaterOrEqual(t, len(env), 2)
	assert.Equal(t, []string{"A_VAR=1", "B_VAR=2"}, env[len(env)-2:])
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "npx", Command{Name: "npx"}.String())
	assert.Equal(t, "npx hardhat compile", Command{Name: "npx", Args: []string{"hardhat", "compile"}}.String())
}

func TestPrimaryOutput(t *testing.T) {
	t.Run("returns stderr when present", func(t *testing.T) {
		assert.Equal(t, "error message", PrimaryOutput(Outcome{Stdout: "normal output", Stderr: "error message"}))
	})

	t.Run("returns stdout when no stderr", func(t *testing.T) {
		assert.Equal(t, "normal output", PrimaryOutput(Outcome{Stdout: "normal output"}))
	})

	t.Run("returns empty string when both are empty", func(t *testing.T) {
		assert.Equal(t, "", PrimaryOutput(Outcome{}))
	})
}

func TestScriptedRunnerCountsLaunches(t *testing.T) {
	r := &ScriptedRunner{NextPID: 42}

	out, err := r.Run(context.Background(), Command{Name: "npx"})
	require.NoError(t, err)
	assert.True(t, out.Success)

	pid, err := r.SpawnDetached(Command{Name: "npx"})
	require.NoError(t, err)
	assert.Equal(t, 42, pid)

	calls := r.Calls()
	require.Len(t, calls, 2)
	assert.False(t, calls[0].Detached)
	assert.True(t, calls[1].Detached)
	assert.Equal(t, 2, r.Launches())
}
