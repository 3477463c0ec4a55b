package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/app/orchestrator"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/tui"
)

type operation func(ctx context.Context, svc *orchestrator.Service) (string, error)

type messageResult struct {
	Message string `json:"message"`
}

type errorResult struct {
	Error string `json:"error"`
}

// errReported marks a failure that has already been printed.
var errReported = errors.New("operation failed")

// runOperation executes op behind a spinner when stdout is a terminal and
// prints the result in the requested format.
func runOperation(cmd *cobra.Command, flags *rootFlags, label string, op operation) error {
	app, err := newAppContext(cmd, flags)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	interactive := !flags.jsonOutput && !flags.verbose && isTerminalWriter(out)
	msg, err := tui.Wait(cmd.Context(), label, out, interactive, func(ctx context.Context) (string, error) {
		return op(ctx, app.Service)
	})
	if err != nil {
		return reportFailure(cmd, flags, label, err)
	}

	if flags.jsonOutput {
		return writeJSON(cmd, messageResult{Message: msg})
	}
	fmt.Fprintln(out, tui.RenderResult(label, msg, nil))
	return nil
}

// reportFailure prints err in the requested format and returns errReported so
// main only sets the exit status.
func reportFailure(cmd *cobra.Command, flags *rootFlags, label string, err error) error {
	if flags.jsonOutput {
		if jsonErr := writeJSON(cmd, errorResult{Error: err.Error()}); jsonErr != nil {
			return err
		}
		return errReported
	}
	fmt.Fprintln(cmd.ErrOrStderr(), tui.RenderResult(label, "", err))
	return errReported
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminalWriter(w any) bool {
	f, ok := w.(*os.File)
	return ok && tui.IsTerminal(f)
}
