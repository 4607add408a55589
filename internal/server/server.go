// Package server implements the prodgraph HTTP API.
//
// Routes:
//
//	GET    /healthz
//	GET    /version
//	GET    /metrics
//	GET    /api/v1/items?q=&lang=&craftable=&limit=
//	GET    /api/v1/items/{id}
//	POST   /api/v1/chains
//	POST   /api/v1/layouts
//	GET    /api/v1/render?item=&amount=&format=...
//	POST   /api/v1/sessions
//	GET    /api/v1/sessions/{id}
//	DELETE /api/v1/sessions/{id}
//	PUT    /api/v1/sessions/{id}/language
//	PUT    /api/v1/sessions/{id}/miners/{key}
//
// Miner keys contain slashes ("iron-plate/0:iron-ingot/0:iron-ore"), so the
// miners route matches the rest of the path.
//
// All /api/v1 routes share one pipeline.Runner and are rate limited per
// client address.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/prodgraph/pkg/catalog"
	"github.com/matzehuels/prodgraph/pkg/chain"
	"github.com/matzehuels/prodgraph/pkg/i18n"
	"github.com/matzehuels/prodgraph/pkg/layout"
	"github.com/matzehuels/prodgraph/pkg/pipeline"
	"github.com/matzehuels/prodgraph/pkg/session"
)

// Timeouts for the underlying http.Server.
const (
	ReadHeaderTimeout = 5 * time.Second
	WriteTimeout      = 60 * time.Second
	IdleTimeout       = 2 * time.Minute
	ShutdownTimeout   = 10 * time.Second
)

// Options configures a [Server].
type Options struct {
	Addr string

	Catalog  *catalog.Catalog // nil means catalog.Default()
	Runner   *pipeline.Runner // nil means an uncached runner
	Sessions session.Store    // nil means an in-memory store with default limits
	Logger   *log.Logger

	// Defaults for requests that leave these fields empty.
	Language  string
	Mode      chain.Mode
	Window    float64
	Direction layout.Direction

	RateLimit   float64 // requests per second per client; 0 disables limiting
	Burst       int
	TrustProxy  bool
	CORSOrigins []string

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// Server serves the API.
type Server struct {
	opts    Options
	handler http.Handler
}

// New creates a server with the given options.
func New(opts Options) *Server {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewMemoryStore(session.DefaultSize, session.DefaultTTL)
	}
	if lang, err := i18n.Normalize(opts.Language); err == nil {
		opts.Language = lang
	} else {
		opts.Language = i18n.Default
	}

	s := &Server{opts: opts}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger(s.opts.Logger))
	r.Use(instrument)
	r.Use(corsHandler(s.opts.CORSOrigins))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/version", s.handleVersion)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(newRateLimiter(s.opts.RateLimit, s.opts.Burst, s.opts.TrustProxy).middleware)
		}

		r.Get("/items", s.handleListItems)
		r.Get("/items/{id}", s.handleGetItem)
		r.Post("/chains", s.handleChain)
		r.Post("/layouts", s.handleLayout)
		r.Get("/render", s.handleRender)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/{id}", s.handleGetSession)
			r.Delete("/{id}", s.handleDeleteSession)
			r.Put("/{id}/language", s.handleSetLanguage)
			r.Put("/{id}/miners/*", s.handleSetMiner)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("server starting", "addr", s.opts.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.opts.Logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
