// Package metrics records process launches and RPC traffic on a private
// prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hardhatdesk"

// Process outcome labels.
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeLaunchError = "launch_error"
	OutcomeDetached    = "detached"
)

// Recorder owns the collectors. A nil *Recorder records nothing.
type Recorder struct {
	registry        *prometheus.Registry
	processes       *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	rpcRequests     *prometheus.CounterVec
	rpcDuration     *prometheus.HistogramVec
}

// New creates a Recorder with its own registry, including Go runtime collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		processes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_launches_total",
			Help:      "External processes launched, by subcommand and outcome.",
		}, []string{"subcommand", "outcome"}),
		processDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "process_duration_seconds",
			Help:      "Wall time of blocking external processes.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"subcommand"}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "JSON-RPC requests, by method and result code.",
		}, []string{"method", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "JSON-RPC request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(
		r.processes,
		r.processDuration,
		r.rpcRequests,
		r.rpcDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveProcess records a finished or detached process.
func (r *Recorder) ObserveProcess(subcommand, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.processes.WithLabelValues(subcommand, outcome).Inc()
	if outcome == OutcomeSuccess || outcome == OutcomeFailure {
		r.processDuration.WithLabelValues(subcommand).Observe(elapsed.Seconds())
	}
}

// ObserveRPC records one handled JSON-RPC request. Code is "ok" on success.
func (r *Recorder) ObserveRPC(method, code string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.rpcRequests.WithLabelValues(method, code).Inc()
	r.rpcDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
