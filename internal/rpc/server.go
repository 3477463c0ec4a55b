// Package rpc serves the toolchain operations to the desktop frontend as
// JSON-RPC 2.0 over HTTP.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/app/orchestrator"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/logger"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/metrics"
)

// DefaultAddr is used when Options.Addr is empty.
const DefaultAddr = "127.0.0.1:8787"

const shutdownTimeout = 5 * time.Second

// Service is the operation surface dispatched by the server.
type Service interface {
	ProbeStatus(ctx context.Context, projectPath string) orchestrator.Status
	InstallToolchain(ctx context.Context) (string, error)
	CreateProject(ctx context.Context, path string) (string, error)
	StartNetwork(ctx context.Context, path string) (string, error)
	Compile(ctx context.Context, path string) (string, error)
	Test(ctx context.Context, path string) (string, error)
	Deploy(ctx context.Context, path string) (string, error)
	RunTask(ctx context.Context, path, taskName string, args []string) (string, error)
	RunConsoleExpression(ctx context.Context, path, expression string) (string, error)
	ListContracts(ctx context.Context, path string) ([]orchestrator.Contract, error)
}

var _ Service = (*orchestrator.Service)(nil)

// Options configures a Server.
type Options struct {
	Addr    string
	Logger  *logger.Logger
	Metrics *metrics.Recorder
	// RateLimitRPS and RateLimitBurst bound requests per client address.
	// A zero RPS disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server is the HTTP front of a Service.
type Server struct {
	httpServer *http.Server
	service    Service
	log        *logger.Logger
	metrics    *metrics.Recorder
	limiter    *rateLimiter
}

// NewServer builds a server; it does not listen until Run or Serve.
func NewServer(svc Service, opts Options) *Server {
	addr := opts.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		service: svc,
		log:     log,
		metrics: opts.Metrics,
		limiter: newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
	}
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/rpc", s.handleRPC)
	mux.Handle("/metrics", opts.Metrics.Handler())
	return s
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully, letting in-flight requests finish for a bounded time.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		err := s.httpServer.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
			return
		}
		errCh <- err
	}()
	s.log.Info("rpc server listening", "addr", ln.Addr().String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.log.Info("rpc server stopped")
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
