package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/scalelist/pkg/pipeline"
	"github.com/matzehuels/scalelist/pkg/store"
)

// DefaultRequestTimeout bounds every request when Options leaves it unset.
const DefaultRequestTimeout = 30 * time.Second

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	Logger         *log.Logger

	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

// Server routes HTTP requests to a pipeline runner and a node store.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New builds a server. A nil store disables the /v1/nodes routes.
func New(runner *pipeline.Runner, st store.Store, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	s := &Server{runner: runner, store: st, opts: opts, logger: opts.Logger}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.observe, middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"Content-Length"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/schema", s.handleSchema)
		r.Get("/graph", s.handleGraph)
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/compute/{attribute}", s.handleCompute)

		if s.store != nil {
			r.Route("/nodes", func(r chi.Router) {
				r.Get("/", s.handleListNodes)
				r.Route("/{name}", func(r chi.Router) {
					r.Get("/", s.handleGetNode)
					r.Put("/", s.handlePutNode)
					r.Delete("/", s.handleDeleteNode)
					r.Post("/evaluate", s.handleEvaluateNode)
				})
			})
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
