// If you are AI: This file implements the HTTP status server lifecycle and routing.

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"framerelay/internal/config"
	"framerelay/internal/core/cpuinfo"
	"framerelay/internal/core/session"
	"framerelay/internal/logging"
	"framerelay/internal/svc/api"
	"framerelay/internal/svc/health"
	"framerelay/internal/svc/relay"
	"framerelay/internal/svc/statsws"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// New creates a new server instance with the given configuration.
// The server is not started until Start is called.
func New(cfg *config.Config, registry *session.Registry, mgr *relay.Manager, role string, logger *zap.Logger) *Server {
	logger = logging.OrNop(logger).Named("server")
	mux := http.NewServeMux()

	health.New(func() bool { return registry.Count() > 0 }).RegisterRoutes(mux)
	api.NewService(registry, mgr, role, cpuinfo.Host()).RegisterRoutes(mux)
	stats := statsws.NewHandler(registry, cfg.Server.StatsInterval, logger)
	stats.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.StatusPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	// Hijacked stats connections are not tracked by Shutdown
	httpServer.RegisterOnShutdown(stats.Close)

	return &Server{
		httpServer: httpServer,
		logger:     logger,
	}
}

// Start begins serving HTTP requests.
// This method blocks until the server is stopped or encounters an error.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves HTTP requests on ln. Returns nil after a clean shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("status server listening", zap.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Handler returns the routed handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Shutdown gracefully stops the server with a timeout.
// Returns an error if shutdown fails or times out.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ShutdownWithTimeout stops the server with a fixed 5-second timeout.
// This is a convenience wrapper around Shutdown.
func (s *Server) ShutdownWithTimeout() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
