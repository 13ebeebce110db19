// Package server exposes the erdsync parser and write-back over HTTP.
//
// Stateless endpoints take the document in the request body. Session
// endpoints keep documents in a [session.Store] and re-derive the model
// from the stored text on every read.
//
//	POST   /api/parse
//	POST   /api/move
//	POST   /api/render
//	GET    /api/sessions
//	POST   /api/sessions
//	GET    /api/sessions/{id}
//	PUT    /api/sessions/{id}
//	DELETE /api/sessions/{id}
//	GET    /api/sessions/{id}/model
//	POST   /api/sessions/{id}/nodes/{nodeID}/move
//	GET    /metrics
//	GET    /healthz
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/erdsync/pkg/dsl"
	"github.com/matzehuels/erdsync/pkg/observability"
	"github.com/matzehuels/erdsync/pkg/pipeline"
	"github.com/matzehuels/erdsync/pkg/session"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Store   session.Store
	Runner  *pipeline.Runner
	Parse   dsl.Options
	Logger  *log.Logger
	Metrics *Metrics
}

// Server is the HTTP API.
type Server struct {
	store   session.Store
	runner  *pipeline.Runner
	parse   dsl.Options
	logger  *log.Logger
	metrics *Metrics

	// editMu serializes read-modify-write cycles on sessions.
	editMu sync.Mutex
}

// New returns a server. A nil store uses an in-memory store, a nil runner
// renders without a cache and nil metrics creates a fresh registry.
func New(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = session.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	return &Server{
		store:   opts.Store,
		runner:  opts.Runner,
		parse:   opts.Parse,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// RegisterHooks routes library observability events to this server's
// metrics. Call once at startup.
func (s *Server) RegisterHooks() {
	observability.SetSyncHooks(s.metrics)
	observability.SetCacheHooks(s.metrics)
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.metrics.instrument)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/move", s.handleMove)
		r.Post("/render", s.handleRender)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.listSessions)
			r.Post("/", s.createSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Put("/", s.updateSession)
				r.Delete("/", s.deleteSession)
				r.Get("/model", s.sessionModel)
				r.Post("/nodes/{nodeID}/move", s.moveSessionNode)
			})
		})
	})
	return r
}

// Run serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()))
	})
}
