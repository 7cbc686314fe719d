// Package api serves cluster builds over HTTP.
//
// # Endpoints
//
//	GET  /healthz                  liveness probe
//	POST /v1/clusters              build a cluster from an index
//	GET  /v1/clusters              list recent builds
//	GET  /v1/clusters/{id}         build metadata
//	GET  /v1/clusters/{id}/image   rendered image
//
// A build request carries the index as text (the same format the crawler
// writes) or as a list of entries, plus optional layout and render options:
//
//	{
//	  "index": "Album Index:\n  Abbey Road: 12 songs\n  Revolver: 3 songs\n",
//	  "options": {"max_size": 200, "format": "jpg"}
//	}
//
// Covers are resolved from the server's cover directory. Errors are
// returned as {"error": {"code": ..., "message": ...}}; a build in which
// no cover resolves answers 422 and lists the excluded entries.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/covercluster/pkg/pipeline"
	"github.com/matzehuels/covercluster/pkg/store"
)

const (
	// maxRequestBytes bounds a build request body.
	maxRequestBytes = 1 << 20

	shutdownTimeout = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	Runner    *pipeline.Runner
	Store     store.Store
	CoversDir string
	Logger    *log.Logger
	// BuildTimeout bounds a single build. Zero means one minute.
	BuildTimeout time.Duration
}

// Server is the HTTP API.
type Server struct {
	runner       *pipeline.Runner
	store        store.Store
	coversDir    string
	logger       *log.Logger
	buildTimeout time.Duration
	router       chi.Router
}

// New creates a server and its routes.
func New(cfg Config) *Server {
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.CoversDir == "" {
		cfg.CoversDir = pipeline.DefaultCoversDir
	}
	if cfg.BuildTimeout == 0 {
		cfg.BuildTimeout = time.Minute
	}

	s := &Server{
		runner:       cfg.Runner,
		store:        cfg.Store,
		coversDir:    cfg.CoversDir,
		logger:       cfg.Logger,
		buildTimeout: cfg.BuildTimeout,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/clusters", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleGet)
		r.Get("/{id}/image", s.handleImage)
	})
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs one line per request with the charm logger.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
