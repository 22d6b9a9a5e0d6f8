// Package server serves the launch dashboard page and its JSON/SVG API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/launchdash/dashboard"
)

const (
	DefaultAddr            = "127.0.0.1:8052"
	DefaultShutdownTimeout = 5 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithShutdownTimeout bounds how long Run waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithLogger sets the access and lifecycle logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server is the dashboard HTTP front end. Handlers only read the dashboard,
// so requests run concurrently without locking.
type Server struct {
	dash            *dashboard.Dashboard
	addr            string
	shutdownTimeout time.Duration
	logger          *slog.Logger
	page            []byte
	handler         http.Handler
}

// New prepares a server for dash. The page is rendered here, so a broken
// template or chart fails at startup rather than on the first request.
func New(dash *dashboard.Dashboard, opts ...Option) (*Server, error) {
	s := &Server{
		dash:            dash,
		addr:            DefaultAddr,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	page, err := renderPage(dash)
	if err != nil {
		return nil, fmt.Errorf("preparing page: %w", err)
	}
	s.page = page

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/controls", s.handleControls)
	mux.HandleFunc("POST /api/dispatch", s.handleDispatch)
	mux.HandleFunc("GET /api/charts/{chart}", s.handleChart)
	mux.HandleFunc("GET /charts/{file}", s.handleChartSVG)
	mux.HandleFunc("GET /api/launches", s.handleLaunches)
	mux.HandleFunc("GET /api/summary", s.handleSummary)

	s.handler = withAccessLog(s.logger, withBrotli(mux))
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
// A nil return means a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("dashboard listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down", "timeout", s.shutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	})

	return g.Wait()
}
