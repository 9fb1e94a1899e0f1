// Package api exposes the reply pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/symbioza/bridge/pkg/chain"
)

// Server wires the chain executor into HTTP routes and owns the listener
// lifecycle.
type Server struct {
	executor *chain.Executor
	gatherer prometheus.Gatherer

	echo       *echo.Echo
	httpServer *http.Server
}

// ServerConfig configures the HTTP server. Gatherer may be nil to disable
// the /metrics endpoint.
type ServerConfig struct {
	Addr     string
	Executor *chain.Executor
	Gatherer prometheus.Gatherer
}

// NewServer builds the server and registers all routes.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		executor: cfg.Executor,
		gatherer: cfg.Gatherer,
	}

	e := echo.New()
	e.Use(requestLogger())
	e.Use(securityHeaders())

	e.POST("/multi_chain", s.multiChainHandler)
	e.GET("/healthz", s.healthHandler)
	if s.gatherer != nil {
		e.GET("/metrics", s.metricsHandler)
	}

	s.echo = e
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routing tree for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// metricsHandler handles GET /metrics with standard Prometheus exposition.
func (s *Server) metricsHandler(c *echo.Context) error {
	promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}).
		ServeHTTP(c.Response(), c.Request())
	return nil
}
