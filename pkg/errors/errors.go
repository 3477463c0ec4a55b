package errors

import (
	"fmt"
	"strings"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures configuration validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// LaunchError reports that an external command could not be started at all
// (binary missing, permission denied). It never describes a process that ran.
type LaunchError struct {
	Command string
	Err     error
}

// NewLaunchError constructs a LaunchError.
func NewLaunchError(command string, err error) error {
	return &LaunchError{Command: command, Err: err}
}

func (e *LaunchError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("failed to launch %s: %v", e.Command, e.Err)
}

// Unwrap exposes the root error.
func (e *LaunchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CommandError represents a process that ran and exited unsuccessfully.
// Stdout is retained because it often carries partial diagnostics.
type CommandError struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// NewCommandError constructs a CommandError from captured process output.
func NewCommandError(command string, exitCode int, stdout, stderr string) error {
	return &CommandError{Command: command, ExitCode: exitCode, Stdout: stdout, Stderr: stderr}
}

func (e *CommandError) Error() string {
	if e == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s failed", e.Command)
	if e.ExitCode > 0 {
		fmt.Fprintf(&b, " (exit code %d)", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Stderr != "" {
		fmt.Fprintf(&b, "\n%s", e.Stderr)
	}
	if e.Stdout != "" {
		fmt.Fprintf(&b, "\n\nOutput:\n%s", e.Stdout)
	}
	return b.String()
}

// Unwrap exposes the root error, if any.
func (e *CommandError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PreconditionError is returned when an operation is rejected before any
// process is launched.
type PreconditionError struct {
	Check   string
	Message string
}

// NewPreconditionError constructs a PreconditionError.
func NewPreconditionError(check, message string) error {
	return &PreconditionError{Check: check, Message: message}
}

func (e *PreconditionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Check != "" {
		return fmt.Sprintf("precondition failed [%s]: %s", e.Check, e.Message)
	}
	return fmt.Sprintf("precondition failed: %s", e.Message)
}

// ProvisionError is a fatal project provisioning failure naming the step that failed.
type ProvisionError struct {
	Step string
	Err  error
}

// NewProvisionError constructs a ProvisionError for the given step.
func NewProvisionError(step string, err error) error {
	return &ProvisionError{Step: step, Err: err}
}

func (e *ProvisionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("failed to %s: %v", e.Step, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ProvisionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
