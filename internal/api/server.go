// Package api exposes the agent's operational HTTP surface.
//
// It serves session statistics and host health to operational tooling on
// the local network. The server follows the same lifecycle pattern as the
// other long-lived components:
//
//	server, err := api.New(deps)
//	server.Start()
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

	"github.com/nerrad567/gray-logic-agent/internal/health"
	"github.com/nerrad567/gray-logic-agent/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-agent/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-agent/internal/mqtt"
	"github.com/nerrad567/gray-logic-agent/internal/stats"
)

// Server timeouts.
const (
	// gracefulShutdownTimeout is the maximum time to wait for in-flight
	// requests to complete during shutdown.
	gracefulShutdownTimeout = 5 * time.Second

	readTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
)

// SessionInfo reports broker session state to the health endpoint.
// Implemented by *mqtt.Session.
type SessionInfo interface {
	State() mqtt.State
	IsConnected() bool
}

// Deps holds the dependencies required by the ops API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	Tracker *stats.Tracker
	Prober  *health.Prober
	Session SessionInfo
	Version string
}

// Server is the operational HTTP server.
type Server struct {
	cfg     config.APIConfig
	logger  *logging.Logger
	tracker *stats.Tracker
	prober  *health.Prober
	session SessionInfo
	version string

	server *http.Server
}

// New creates the ops API server. It is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (logger, tracker, prober, session)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Tracker == nil {
		return nil, fmt.Errorf("statistics tracker is required")
	}
	if deps.Prober == nil {
		return nil, fmt.Errorf("health prober is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("session is required")
	}

	return &Server{
		cfg:     deps.Config,
		logger:  deps.Logger,
		tracker: deps.Tracker,
		prober:  deps.Prober,
		session: deps.Session,
		version: deps.Version,
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	go func() {
		s.logger.Info("ops API listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("ops API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the server, waiting for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("ops API shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down ops API: %w", err)
	}
	return nil
}
