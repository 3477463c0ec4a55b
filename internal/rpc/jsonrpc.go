package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes int64 = 1 << 20 // 1 MiB

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type handlerFunc func(ctx context.Context, s *Server, params json.RawMessage) (any, *rpcError)

var methods = map[string]handlerFunc{
	"health_check": func(context.Context, *Server, json.RawMessage) (any, *rpcError) {
		return map[string]string{"status": "ok"}, nil
	},
	"probeStatus": func(ctx context.Context, s *Server, raw json.RawMessage) (any, *rpcError) {
		var p probeParams
		if rpcErr := decodeParams(raw, &p); rpcErr != nil {
			return nil, rpcErr
		}
		return s.service.ProbeStatus(ctx, p.ProjectPath), nil
	},
	"installToolchain": func(ctx context.Context, s *Server, raw json.RawMessage) (any, *rpcError) {
		if rpcErr := decodeParams(raw, &struct{}{}); rpcErr != nil {
			return nil, rpcErr
		}
		return result(s.service.InstallToolchain(ctx))
	},
	"createProject": pathMethod(func(s Service) pathOp { return s.CreateProject }),
	"startNetwork":  pathMethod(func(s Service) pathOp { return s.StartNetwork }),
	"compile":       pathMethod(func(s Service) pathOp { return s.Compile }),
	"test":          pathMethod(func(s Service) pathOp { return s.Test }),
	"deploy":        pathMethod(func(s Service) pathOp { return s.Deploy }),
	"runTask": func(ctx context.Context, s *Server, raw json.RawMessage) (any, *rpcError) {
		var p taskParams
		if rpcErr := decodeParams(raw, &p); rpcErr != nil {
			return nil, rpcErr
		}
		return result(s.service.RunTask(ctx, p.Path, p.TaskName, p.Args))
	},
	"runConsoleExpression": func(ctx context.Context, s *Server, raw json.RawMessage) (any, *rpcError) {
		var p consoleParams
		if rpcErr := decodeParams(raw, &p); rpcErr != nil {
			return nil, rpcErr
		}
		return result(s.service.RunConsoleExpression(ctx, p.Path, p.Expression))
	},
	"listContracts": func(ctx context.Context, s *Server, raw json.RawMessage) (any, *rpcError) {
		var p pathParams
		if rpcErr := decodeParams(raw, &p); rpcErr != nil {
			return nil, rpcErr
		}
		contracts, err := s.service.ListContracts(ctx, p.Path)
		if err != nil {
			return nil, mapError(err)
		}
		return contracts, nil
	},
}

type pathOp func(ctx context.Context, path string) (string, error)

func pathMethod(op func(Service) pathOp) handlerFunc {
	return func(ctx context.Context, s *Server, raw json.RawMessage) (any, *rpcError) {
		var p pathParams
		if rpcErr := decodeParams(raw, &p); rpcErr != nil {
			return nil, rpcErr
		}
		return result(op(s.service)(ctx, p.Path))
	}
}

func result(msg string, err error) (any, *rpcError) {
	if err != nil {
		return nil, mapError(err)
	}
	return msg, nil
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reqID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, reqID)

	started := time.Now()
	if !s.limiter.allow(clientKey(r), started) {
		s.metrics.ObserveRPC("rate_limited", strconv.Itoa(codeRateLimited), time.Since(started))
		writeRPC(w, http.StatusTooManyRequests, rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: codeRateLimited, Message: "rate limit exceeded"},
		})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	// Batches are not supported.
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		writeRPC(w, http.StatusOK, invalidRequest(nil))
		return
	}

	var req rpcRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&req); err != nil {
		writeRPC(w, http.StatusOK, rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: codeParseError, Message: "parse error"},
		})
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeRPC(w, http.StatusOK, invalidRequest(req.ID))
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		writeRPC(w, http.StatusOK, invalidRequest(req.ID))
		return
	}

	log := s.log.With("request_id", reqID, "method", req.Method)
	log.Info("rpc request", "rpc_id", string(req.ID))

	handler, ok := methods[req.Method]
	label := req.Method
	var res any
	var rpcErr *rpcError
	if ok {
		res, rpcErr = handler(r.Context(), s, req.Params)
	} else {
		label = "unknown"
		rpcErr = &rpcError{Code: codeMethodNotFound, Message: "method not found"}
	}

	elapsed := time.Since(started)
	code := "ok"
	if rpcErr != nil {
		code = strconv.Itoa(rpcErr.Code)
		log.Warn("rpc failed", "rpc_code", rpcErr.Code, "latency_ms", elapsed.Milliseconds())
	} else {
		log.Info("rpc response", "latency_ms", elapsed.Milliseconds())
	}
	s.metrics.ObserveRPC(label, code, elapsed)

	writeRPC(w, http.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  res,
		Error:   rpcErr,
	})
}

func writeRPC(w http.ResponseWriter, status int, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func invalidRequest(id json.RawMessage) rpcResponse {
	return rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: codeInvalidRequest, Message: "invalid request"},
	}
}
