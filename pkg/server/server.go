// Package server exposes the layout and interaction engine over HTTP.
//
// Each POST /v1/scenes creates a session holding a live viewer; the
// hover, activate and inspector routes dispatch events to that viewer and
// answer with the updated scene document and inspector state. Exported
// documents can be saved to a [store.Store] and fetched back by ID.
//
// Routes:
//
//	GET    /healthz
//	POST   /v1/scenes
//	GET    /v1/scenes/{id}
//	DELETE /v1/scenes/{id}
//	POST   /v1/scenes/{id}/reset
//	POST   /v1/scenes/{id}/layers/{index}/hover
//	DELETE /v1/scenes/{id}/layers/{index}/hover
//	POST   /v1/scenes/{id}/layers/{index}/activate
//	POST   /v1/scenes/{id}/inspector/close
//	POST   /v1/scenes/{id}/inspector/reopen
//	POST   /v1/saved
//	GET    /v1/saved/{id}
//	DELETE /v1/saved/{id}
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
	"golang.org/x/time/rate"

	"github.com/matzehuels/layerscape/pkg/config"
	"github.com/matzehuels/layerscape/pkg/pipeline"
	"github.com/matzehuels/layerscape/pkg/session"
	"github.com/matzehuels/layerscape/pkg/store"
)

const (
	maxBodyBytes    = 16 << 20
	cleanupInterval = time.Minute
	shutdownTimeout = 5 * time.Second
)

// Server is the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	cfg      config.Config
	sessions *session.Registry
	store    store.Store
	limiter  *rate.Limiter
	logger   *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStore sets where saved scenes go (default: in memory).
func WithStore(s store.Store) Option { return func(srv *Server) { srv.store = s } }

// WithLogger routes request logging to l.
func WithLogger(l *log.Logger) Option { return func(srv *Server) { srv.logger = l } }

// WithRateLimit overrides the configured request rate. A zero rps
// disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(srv *Server) { srv.cfg.Server.RateLimit, srv.cfg.Server.RateBurst = rps, burst }
}

// WithSessionTTL overrides the configured session idle lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(srv *Server) { srv.cfg.Server.SessionTTL = ttl }
}

// New creates a server that loads architectures through runner and takes
// its layout, style and server settings from runner.Config().
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner: runner,
		cfg:    runner.Config(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	if s.cfg.Server.RateLimit > 0 {
		burst := max(s.cfg.Server.RateBurst, 1)
		s.limiter = rate.NewLimiter(rate.Limit(s.cfg.Server.RateLimit), burst)
	}
	s.sessions = session.NewRegistry(s.cfg.Server.SessionTTL)
	return s
}

// Handler returns the router with its middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(s.rateLimit)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/scenes", func(r chi.Router) {
		r.Post("/", s.handleCreateScene)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetScene)
			r.Delete("/", s.handleDeleteScene)
			r.Post("/reset", s.handleReset)
			r.Post("/layers/{index}/hover", s.handleHoverEnter)
			r.Delete("/layers/{index}/hover", s.handleHoverExit)
			r.Post("/layers/{index}/activate", s.handleActivate)
			r.Post("/inspector/close", s.handleInspectorClose)
			r.Post("/inspector/reopen", s.handleInspectorReopen)
		})
	})

	r.Route("/v1/saved", func(r chi.Router) {
		r.Post("/", s.handleSave)
		r.Get("/{id}", s.handleGetSaved)
		r.Delete("/{id}", s.handleDeleteSaved)
	})

	return r
}

// Sessions exposes the session registry.
func (s *Server) Sessions() *session.Registry { return s.sessions }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.sessions.Run(janitorCtx, cleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
