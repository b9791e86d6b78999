// Package api provides the HTTP surface of chassisd.
//
// It exposes power status and control operations on managed endpoints to
// remote callers (a home-automation hub, operators' scripts), authorized
// per request by group bearer tokens.
//
// The server follows the same lifecycle pattern as other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/chassisd/internal/audit"
	"github.com/nerrad567/chassisd/internal/auth"
	"github.com/nerrad567/chassisd/internal/infrastructure/config"
	"github.com/nerrad567/chassisd/internal/infrastructure/logging"
	"github.com/nerrad567/chassisd/internal/ipmi"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// EventPublisher publishes power-action outcomes for external subscribers.
// Satisfied by the infrastructure mqtt client; nil disables event publishing.
type EventPublisher interface {
	PublishEvent(topic string, payload []byte) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Resolver *auth.Resolver
	Executor ipmi.Executor
	Audit    audit.Repository // optional: nil disables the audit trail
	Events   EventPublisher   // optional: nil disables MQTT power events
	Version  string
}

// Server is the HTTP API server for chassisd.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	resolver *auth.Resolver
	executor ipmi.Executor
	audit    audit.Repository
	events   EventPublisher
	version  string
	server   *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, resolver, executor)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Resolver == nil {
		return nil, fmt.Errorf("credential resolver is required")
	}
	if deps.Executor == nil {
		return nil, fmt.Errorf("command executor is required")
	}
	// Audit and Events are optional - power operations work without them

	return &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		resolver: deps.Resolver,
		executor: deps.Executor,
		audit:    deps.Audit,
		events:   deps.Events,
		version:  deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
