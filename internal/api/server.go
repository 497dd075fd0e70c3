package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/planetprotrader/backend/pkg/config"
	"github.com/planetprotrader/backend/pkg/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	// screenshot uploads and control-plane proxies can take a while
	writeTimeout = 45 * time.Second
	idleTimeout  = 2 * time.Minute
)

// Server serves the REST routes and the /ws stream.
// ⭐ SSOT: HTTP server settings live only in this file
type Server struct {
	srv *http.Server
	log *logger.Logger
	env string
}

// New wires the router into an http.Server listening on cfg.Port.
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              net.JoinHostPort("", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		},
		log: log,
		env: cfg.Env,
	}
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start listens on the configured address and blocks until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. A clean Shutdown returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.log.WithFields(map[string]interface{}{
		"addr": ln.Addr().String(),
		"env":  s.env,
	}).Info("API server listening")

	err := s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("serve: %w", err)
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Draining API server")
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
