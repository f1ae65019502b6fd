package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/passvault/passvault-server/internal/logger"
	"github.com/passvault/passvault-server/internal/model"
)

var _ model.Server = (*HTTP)(nil)

// HTTP wraps net/http.Server behind the model.Server interface so main can
// start it on any security layer and stop it gracefully.
type HTTP struct {
	addr    string
	httpSrv *http.Server
	logger  *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

func NewHTTP(addr string, handler http.Handler, logger *logger.Logger) *HTTP {
	return &HTTP{
		addr: addr,
		httpSrv: &http.Server{
			Handler: handler,
		},
		logger: logger,
	}
}

// Start opens a listener through the security layer and serves on it. It
// blocks until the server stops; a graceful Stop returns nil.
func (s *HTTP) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("HTTP server listening",
		"address", listener.Addr().String())

	if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop shuts the server down gracefully, waiting for in-flight requests up to
// the context deadline.
func (s *HTTP) Stop(ctx context.Context) error {
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// Address returns the bound address once Start has opened the listener, and
// the configured address before that.
func (s *HTTP) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
