// Package server exposes network generation over HTTP.
//
// Routes:
//
//	GET  /v1/health                 liveness and build info
//	POST /v1/networks               config JSON -> network-on-chip XML
//	POST /v1/networks/summary       config JSON -> node and connection counts
//	POST /v1/networks/diagram       config JSON -> diagram (?format=svg|pdf|png|dot)
//	POST /v1/simconfig              simulation JSON -> simulator config XML
//	GET  /metrics                   Prometheus metrics, when enabled
//
// Errors are returned as JSON {"code": ..., "message": ...}.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/nocgen/pkg/pipeline"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	// Addr is the listen address. Empty means DefaultAddr.
	Addr string

	// Metrics serves GET /metrics when non-nil.
	Metrics http.Handler

	// RequestTimeout bounds each request. Zero means 30s.
	RequestTimeout time.Duration
}

// Server serves the generation API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	server *http.Server
}

// New creates a server backed by runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	s := &Server{runner: runner, logger: logger}
	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.routes(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: opts.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(s.withLogging)
	r.Use(middleware.Recoverer)
	r.Use(withSecureHeaders)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Get("/v1/health", handleHealth)
	r.Post("/v1/networks", s.handleNetwork)
	r.Post("/v1/networks/summary", s.handleSummary)
	r.Post("/v1/networks/diagram", s.handleDiagram)
	r.Post("/v1/simconfig", s.handleSimConfig)

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
