package procexec

import (
	"context"
	"sync"
)

// Call records one invocation seen by a ScriptedRunner.
type Call struct {
	Command  Command
	Detached bool
}

// ScriptedRunner is a deterministic Runner for tests. Each call is answered by
// Handler when set, otherwise by a successful empty Outcome. It counts every
// launch attempt so callers can assert that nothing was started.
type ScriptedRunner struct {
	Handler func(ctx context.Context, cmd Command) (Outcome, error)
	// NextPID is returned by SpawnDetached; SpawnErr fails it instead.
	NextPID  int
	SpawnErr error

	mu    sync.Mutex
	calls []Call
}

var _ Runner = (*ScriptedRunner)(nil)

// Run records the call and delegates to Handler.
func (s *ScriptedRunner) Run(ctx context.Context, cmd Command) (Outcome, error) {
	s.record(Call{Command: cmd})
	if s.Handler == nil {
		return Outcome{Success: true}, nil
	}
	return s.Handler(ctx, cmd)
}

// SpawnDetached records the call and returns NextPID or SpawnErr.
func (s *ScriptedRunner) SpawnDetached(cmd Command) (int, error) {
	s.record(Call{Command: cmd, Detached: true})
	if s.SpawnErr != nil {
		return 0, s.SpawnErr
	}
	return s.NextPID, nil
}

// Calls returns a copy of the recorded invocations in order.
func (s *ScriptedRunner) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Launches reports how many processes were requested.
func (s *ScriptedRunner) Launches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *ScriptedRunner) record(c Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}
