// Package server runs the health and digest preview HTTP endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/jira_digest/internal/config"
	"github.com/festy23/jira_digest/internal/digest/handler"
	"github.com/festy23/jira_digest/internal/health"
	"github.com/festy23/jira_digest/internal/middleware"
)

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(ginMode string, healthHandler *health.Handler, digestHandler *handler.Handler, logger *zap.SugaredLogger) *gin.Engine {
	gin.SetMode(ginMode)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(logger), middleware.Recovery(logger))

	r.GET("/health", healthHandler.Check)
	digestHandler.RegisterRoutes(r)

	return r
}

// Server wraps http.Server with the configured timeouts.
type Server struct {
	http   *http.Server
	logger *zap.SugaredLogger
}

// New creates a server for handler.
func New(cfg config.ServerConfig, h http.Handler, logger *zap.SugaredLogger) *Server {
	return &Server{
		http: &http.Server{
			Addr:         cfg.GetAddress(),
			Handler:      h,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Infow("HTTP server listening", "address", ln.Addr().String())
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// ListenAndServe listens on the configured address and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("HTTP server shutting down")
	return s.http.Shutdown(ctx)
}
