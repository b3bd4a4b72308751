// Package server exposes the Bayan engine over gRPC and WebSocket.
// Every request runs in its own engine session; fact snapshots are
// optional and backed by internal/store.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	mdwerror "github.com/msto63/bayan/foundation/core/error"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
	"github.com/msto63/bayan/internal/store"
	"github.com/msto63/bayan/pkg/core/config"
	coreGrpc "github.com/msto63/bayan/pkg/core/grpc"
	"github.com/msto63/bayan/pkg/core/health"
	"github.com/msto63/bayan/pkg/core/version"
)

// maxRequestBody bounds the HTTP run endpoint
const maxRequestBody = 4 << 20

// Config holds server configuration
type Config struct {
	App    *config.Config
	Store  store.FactStore // optional
	Logger *mdwlog.Logger
}

// Server runs the gRPC run service and the HTTP endpoints side by side
type Server struct {
	config   *config.Config
	runner   *Runner
	grpc     *coreGrpc.Server
	http     *http.Server
	listener net.Listener
	health   *health.Registry
	store    store.FactStore
	logger   *mdwlog.Logger
}

// New creates a server from the application configuration
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, mdwerror.New("server configuration is required").WithCode(mdwerror.CodeMissingConfig)
	}
	if cfg.Logger == nil {
		cfg.Logger = mdwlog.GetDefault()
	}
	logger := cfg.Logger.WithField("component", "bayan-server")
	app := cfg.App

	runner := NewRunner(app.Engine, cfg.Store, cfg.Logger)

	grpcCfg := coreGrpc.DefaultServerConfig(app.GRPCAddress())
	grpcCfg.EnableReflection = app.Server.EnableReflection
	grpcCfg.Logger = cfg.Logger
	grpcServer := coreGrpc.NewServer(grpcCfg)
	RegisterRunnerServer(grpcServer.GRPCServer(), &grpcRunner{runner: runner})

	registry := health.NewRegistry("bayan", version.Server)
	registry.Register(health.ErrorCheck("engine", func(ctx context.Context) error {
		resp, err := runner.Run(ctx, &RunRequest{Name: "health", Source: "1 + 1;"})
		if err != nil {
			return err
		}
		if resp.Error != nil || resp.Value != "2" {
			return mdwerror.Newf("smoke run returned %q", resp.Value).WithCode(mdwerror.CodeInternal)
		}
		return nil
	}))
	if cfg.Store != nil {
		registry.Register(health.PingCheck("store", cfg.Store))
	}

	s := &Server{
		config: app,
		runner: runner,
		grpc:   grpcServer,
		health: registry,
		store:  cfg.Store,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", NewWebSocketHandler(runner, app.Server.AllowedOrigins, cfg.Logger))
	mux.HandleFunc("/api/v1/run", s.handleRun)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/version", s.handleVersion)

	s.http = &http.Server{
		Addr:         app.HTTPAddress(),
		Handler:      loggingMiddleware(logger, mux),
		ReadTimeout:  app.Server.ReadTimeout.Duration,
		WriteTimeout: app.Server.WriteTimeout.Duration,
	}
	return s, nil
}

// Runner returns the request runner
func (s *Server) Runner() *Runner {
	return s.runner
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}

// Start binds both listeners and serves in the background
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return mdwerror.Wrap(err, "failed to listen on "+s.http.Addr).WithCode(mdwerror.CodeNetworkError)
	}
	if err := s.grpc.StartAsync(); err != nil {
		listener.Close()
		return err
	}
	s.listener = listener

	go func() {
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorWithErr("HTTP server error", err)
		}
	}()

	s.refreshServingStatus(context.Background())
	s.logger.Info("bayan server started", mdwlog.Fields{
		"grpc": s.GRPCAddress(),
		"http": s.HTTPAddress(),
	})
	return nil
}

// Run starts the server and blocks until ctx ends
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return s.Stop(stopCtx)
		case <-ticker.C:
			s.refreshServingStatus(ctx)
		}
	}
}

// refreshServingStatus publishes the health registry's verdict on the
// gRPC health service
func (s *Server) refreshServingStatus(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	report := s.health.Check(ctx)
	s.grpc.SetServingStatus("", report.Healthy())
	s.grpc.SetServingStatus(ServiceName, report.Healthy())
	if !report.Healthy() {
		s.logger.Warn("server unhealthy", mdwlog.Fields{"failing": report.Failing()})
	}
}

// Stop shuts both servers down
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping bayan server")
	s.grpc.StopWithTimeout(ctx)
	if err := s.http.Shutdown(ctx); err != nil {
		return mdwerror.Wrap(err, "HTTP shutdown failed").WithCode(mdwerror.CodeInternal)
	}
	return nil
}

// GRPCAddress returns the bound gRPC address
func (s *Server) GRPCAddress() string {
	return s.grpc.Address()
}

// HTTPAddress returns the bound HTTP address
func (s *Server) HTTPAddress() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.http.Addr
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, WSErrorPayload{Code: "method_not_allowed", Message: "use POST"})
		return
	}
	var req RunRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, WSErrorPayload{Code: "invalid_payload", Message: err.Error()})
		return
	}
	resp, err := s.runner.Run(r.Context(), &req)
	if err != nil {
		writeJSON(w, httpStatus(err), WSErrorPayload{Code: mdwerror.GetCode(err).String(), Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealth runs the checks. ?cached serves the report of the last
// periodic refresh instead.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Last()
	if report == nil || !r.URL.Query().Has("cached") {
		report = s.health.Check(r.Context())
	}
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"server":   version.Server,
		"language": version.Language,
		"protocol": version.WireProtocol,
		"commit":   version.Commit,
	})
}

func httpStatus(err error) int {
	switch mdwerror.GetCode(err) {
	case mdwerror.CodeInvalidInput:
		return http.StatusBadRequest
	case mdwerror.CodeNotFound:
		return http.StatusNotFound
	case mdwerror.CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *mdwlog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Debug("HTTP request", mdwlog.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapper.statusCode,
			"duration": time.Since(start).String(),
		})
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}
