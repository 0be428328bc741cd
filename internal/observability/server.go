// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package observability exposes authentication metrics and the health
// endpoints of the warden service.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
)

// DefaultCheckTimeout bounds a single health check run by the readiness probe.
const DefaultCheckTimeout = 2 * time.Second

// ReadinessChecker returns whether the service is ready to accept requests.
type ReadinessChecker func() bool

// HealthCheck probes one dependency, such as the identity directory.
type HealthCheck func(ctx context.Context) error

// Server serves /metrics and the liveness and readiness probes.
type Server struct {
	addr         string
	registry     *prometheus.Registry
	metrics      *Metrics
	isReady      ReadinessChecker
	checks       map[string]HealthCheck
	checkTimeout time.Duration
	logger       *slog.Logger

	running    atomic.Bool
	listener   net.Listener
	httpServer *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the server logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHealthCheck adds a named dependency check to the readiness probe.
// A nil check is ignored; a repeated name replaces the earlier check.
func WithHealthCheck(name string, check HealthCheck) ServerOption {
	return func(s *Server) {
		if name != "" && check != nil {
			s.checks[name] = check
		}
	}
}

// WithCheckTimeout overrides DefaultCheckTimeout.
func WithCheckTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.checkTimeout = d
		}
	}
}

// NewServer creates a server listening on addr ("127.0.0.1:9100", ":9100").
// Metrics go to a private registry together with the Go and process collectors.
func NewServer(addr string, readinessChecker ReadinessChecker, opts ...ServerOption) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &Server{
		addr:         addr,
		registry:     registry,
		metrics:      NewMetrics(registry),
		isReady:      readinessChecker,
		checks:       make(map[string]HealthCheck),
		checkTimeout: DefaultCheckTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the authentication metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start begins serving. The returned channel receives a serve error, if
// any, and is closed when the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Code("OBSERVABILITY_ALREADY_RUNNING").Errorf("observability server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("OBSERVABILITY_LISTEN_FAILED").With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("observability server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("observability server started",
		"addr", listener.Addr().String(),
		"health_checks", s.checkNames())
	return errCh, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/healthz/liveness", s.handleLiveness)
	mux.HandleFunc("/healthz/readiness", s.handleReadiness)
	return mux
}

// Stop shuts the server down. Stopping a stopped server is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_observability_server").Wrap(err)
		}
	}
	s.logger.Info("observability server stopped")
	return nil
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) checkNames() []string {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckResult is the outcome of one named health check.
type CheckResult struct {
	Name string
	Err  error
}

// RunChecks runs every health check in name order, each bounded by the
// check timeout.
func (s *Server) RunChecks(ctx context.Context) []CheckResult {
	names := s.checkNames()
	results := make([]CheckResult, 0, len(names))
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, s.checkTimeout)
		err := s.checks[name](checkCtx)
		cancel()
		results = append(results, CheckResult{Name: name, Err: err})
	}
	return results
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // client may disconnect
	w.Write([]byte(body))
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok\n")
}

// handleReadiness answers 503 while the service is starting or stopping,
// or when any health check fails. The body lists each check on its own line.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.isReady != nil && !s.isReady() {
		writeText(w, http.StatusServiceUnavailable, "not ready\n")
		return
	}

	results := s.RunChecks(r.Context())
	if len(results) == 0 {
		writeText(w, http.StatusOK, "ok\n")
		return
	}

	status := http.StatusOK
	var b strings.Builder
	for _, res := range results {
		if res.Err != nil {
			status = http.StatusServiceUnavailable
			s.logger.WarnContext(r.Context(), "health check failed", "check", res.Name, "error", res.Err)
			fmt.Fprintf(&b, "%s: failing\n", res.Name)
			continue
		}
		fmt.Fprintf(&b, "%s: ok\n", res.Name)
	}
	writeText(w, status, b.String())
}
