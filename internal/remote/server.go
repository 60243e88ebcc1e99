// Package remote exposes a running story over HTTP so it can be paused,
// resumed and navigated from another device.
package remote

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"storyview/internal/library"
	"storyview/internal/playback"
)

// Version is reported by the health endpoint.
const Version = "0.3.0"

// Target is the story being controlled. *playback.Player implements it.
type Target interface {
	Snapshot() (playback.Snapshot, bool)
	Advance() bool
	Rewind() bool
	Pause() bool
	Resume() bool
}

// Catalog lists stored stories. *library.Store implements it.
type Catalog interface {
	List() ([]library.Record, error)
	Resolve(ref string) (library.Record, error)
}

// Config configures the HTTP listener.
type Config struct {
	Addr        string
	ReadTimeout time.Duration
	// Title labels the story in state responses.
	Title string
}

type Server struct {
	cfg        Config
	logger     zerolog.Logger
	httpServer *http.Server
	router     *chi.Mux
	target     Target
	catalog    Catalog
}

// New builds the server. catalog may be nil, in which case the story routes
// answer 503.
func New(cfg Config, logger zerolog.Logger, target Target, catalog Catalog) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger.With().Str("component", "remote").Logger(),
		target:  target,
		catalog: catalog,
	}

	s.router = chi.NewRouter()
	s.router.Use(LoggingMiddleware(s.logger))
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:        cfg.Addr,
		Handler:     s.router,
		ReadTimeout: cfg.ReadTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.health)

		r.Get("/playback/state", s.state)
		r.Post("/playback/play", s.command(s.target.Resume))
		r.Post("/playback/pause", s.command(s.target.Pause))
		r.Post("/playback/next", s.command(s.target.Advance))
		r.Post("/playback/previous", s.command(s.target.Rewind))

		r.Get("/stories", s.listStories)
		r.Get("/stories/{ref}", s.getStory)
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.httpServer.Addr).
		Msg("starting remote control")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down remote control")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}
