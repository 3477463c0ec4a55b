package rpc

import (
	"errors"

	hderrors "github.com/alexisbeaulieu97/hardhatdesk/pkg/errors"
)

// JSON-RPC error codes. The -320xx range below -32000 is application defined.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternal       = -32000
	codeLaunch         = -32001
	codeSubprocess     = -32002
	codePrecondition   = -32003
	codeProvision      = -32004
	codeRateLimited    = -32029
)

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// commandData keeps both streams of a failed process visible to the caller.
type commandData struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// mapError converts a service error into its JSON-RPC form. Provisioning is
// checked before process errors because it wraps them.
func mapError(err error) *rpcError {
	var (
		preErr    *hderrors.PreconditionError
		provErr   *hderrors.ProvisionError
		cmdErr    *hderrors.CommandError
		launchErr *hderrors.LaunchError
	)
	switch {
	case errors.As(err, &preErr):
		return &rpcError{Code: codePrecondition, Message: err.Error()}
	case errors.As(err, &provErr):
		return &rpcError{Code: codeProvision, Message: err.Error(), Data: map[string]string{"step": provErr.Step}}
	case errors.As(err, &cmdErr):
		return &rpcError{Code: codeSubprocess, Message: err.Error(), Data: commandData{
			ExitCode: cmdErr.ExitCode,
			Stdout:   cmdErr.Stdout,
			Stderr:   cmdErr.Stderr,
		}}
	case errors.As(err, &launchErr):
		return &rpcError{Code: codeLaunch, Message: err.Error()}
	default:
		return &rpcError{Code: codeInternal, Message: err.Error()}
	}
}
