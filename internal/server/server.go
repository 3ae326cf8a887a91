// Package server exposes the terrain pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz                      liveness check
//	GET  /v1/heightfield.{format}      generate from query parameters
//	POST /v1/heightfield.{format}      generate from a JSON pipeline.Options body
//
// format is one of png, tiff or json. Query parameters mirror the CLI flags:
// algorithm, base_width, base_height, iterations, roughness, low, high, seed,
// scale and refresh. Parameters that are omitted take the server's defaults.
//
// Every response carries an X-Request-ID header. Errors are JSON objects
// {"code": ..., "message": ...}: INVALID_* codes map to 400, NOT_FOUND codes to
// 404 and everything else to 500.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/terrain/pkg/pipeline"
)

const (
	// DefaultMaxCells caps the grid size a single request may generate.
	DefaultMaxCells = 1 << 22

	// maxBodyBytes caps POST bodies.
	maxBodyBytes = 1 << 16

	shutdownTimeout = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	// Defaults are applied to parameters a request leaves out.
	Defaults pipeline.Options

	// MaxCells rejects requests whose grid would exceed this many cells.
	// Zero means DefaultMaxCells.
	MaxCells int
}

// Server serves heightfields generated by a pipeline.Runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
	router chi.Router
}

// New creates a server. A nil logger discards output.
func New(runner *pipeline.Runner, cfg Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.MaxCells == 0 {
		cfg.MaxCells = DefaultMaxCells
	}
	s := &Server{runner: runner, logger: logger, cfg: cfg}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/heightfield.{format}", s.handleHeightfield)
		r.Post("/heightfield.{format}", s.handleHeightfield)
	})

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
