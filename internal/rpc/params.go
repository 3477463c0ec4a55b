package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/config"
)

type probeParams struct {
	ProjectPath string `json:"projectPath"`
}

type pathParams struct {
	Path string `json:"path" validate:"required"`
}

type taskParams struct {
	Path     string   `json:"path" validate:"required"`
	TaskName string   `json:"taskName" validate:"required"`
	Args     []string `json:"args"`
}

type consoleParams struct {
	Path       string `json:"path" validate:"required"`
	Expression string `json:"expression" validate:"required"`
}

// decodeParams reads a params object into dst and validates it. Absent or
// null params decode as an empty object; unknown fields are rejected.
func decodeParams(raw json.RawMessage, dst any) *rpcError {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}

	if reflect.Indirect(reflect.ValueOf(dst)).NumField() == 0 {
		return nil
	}
	if err := config.GetValidator().Struct(dst); err != nil {
		if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
			return &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("invalid params: %s is %s", ves[0].Field(), ves[0].Tag())}
		}
		return &rpcError{Code: codeInvalidParams, Message: "invalid params"}
	}
	return nil
}
