package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows which paths it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Server is a short-lived loopback HTTP server.
//
// It binds in [Server.Listen] before serving so callers can learn the real address (port 0 picks a free port).
type Server struct {
	http   *http.Server
	ln     net.Listener
	errs   chan error
	logger *log.Logger
}

// New creates a [Server] for handler. Nothing is bound until [Server.Listen].
func New(handler http.Handler, logger *log.Logger) *Server {
	return &Server{
		http:   &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second},
		errs:   make(chan error, 1),
		logger: logger,
	}
}

// Listen binds addr.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.ln = ln
	return nil
}

// Addr returns the bound host:port, or "" before [Server.Listen].
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// URL returns an absolute http URL for path on the bound address.
func (s *Server) URL(path string) string {
	return fmt.Sprintf("http://%s%s", s.Addr(), path)
}

// Serve starts serving in the background. Failures other than shutdown arrive on [Server.Errors].
func (s *Server) Serve() {
	if s.ln == nil {
		s.errs <- fmt.Errorf("server is not listening")
		return
	}

	go func() {
		s.logger.Debug("callback server started", "addr", s.Addr())
		if err := s.http.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()
}

// Errors returns the channel serving failures are delivered on.
func (s *Server) Errors() <-chan error {
	return s.errs
}

// Shutdown stops the server, waiting at most until ctx is done for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.ln == nil {
		return nil
	}
	err := s.http.Shutdown(ctx)
	// Serve may never have run, in which case Shutdown does not own the listener.
	_ = s.ln.Close()
	if err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	s.logger.Debug("callback server stopped", "addr", s.Addr())
	return nil
}
