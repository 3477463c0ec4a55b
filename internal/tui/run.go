package tui

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Task is a blocking operation shown behind the spinner.
type Task func(ctx context.Context) (string, error)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Wait runs task and returns its result. When interactive, a spinner is drawn
// on out until the task returns; Ctrl+C cancels the task's context.
func Wait(ctx context.Context, label string, out io.Writer, interactive bool, task Task) (string, error) {
	if !interactive {
		return task(ctx)
	}

	return wait(ctx, label, task, tea.WithOutput(out))
}

func wait(ctx context.Context, label string, task Task, opts ...tea.ProgramOption) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewModel(label), opts...)

	var (
		output  string
		taskErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		output, taskErr = task(ctx)
		program.Send(DoneMsg{Output: output, Err: taskErr})
	}()

	final, runErr := program.Run()
	m, ok := final.(Model)
	if ok && m.IsFinished() {
		<-done
		return m.Result()
	}

	cancel()
	<-done
	if ok && m.Cancelled() {
		if taskErr != nil {
			return output, taskErr
		}
		return output, context.Canceled
	}
	if runErr != nil {
		return output, runErr
	}
	return output, taskErr
}
