// Package api exposes the pacing core over HTTP: layout and pagination,
// per-line fixations, durations, and playback sessions.
package api

import (
	"log/slog"
	"net/http"

	"github.com/dfarrow0/readpace/internal/config"
	"github.com/dfarrow0/readpace/internal/progress"
	"github.com/dfarrow0/readpace/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	cache "github.com/patrickmn/go-cache"
)

// Server is the HTTP API server for readpace.
type Server struct {
	router      chi.Router
	sessions    *session.Store
	layoutCache *cache.Cache
	reporter    *progress.Reporter
	log         *slog.Logger
	cfg         config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(sessions *session.Store, reporter *progress.Reporter, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sessions:    sessions,
		layoutCache: cache.New(cfg.LayoutCacheTTL, 2*cfg.LayoutCacheTTL),
		reporter:    reporter,
		log:         log,
		cfg:         cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/layout", s.handleLayout)
		r.Post("/api/fixations", s.handleFixations)
		r.Post("/api/timing", s.handleTiming)

		r.Post("/api/sessions", s.handleCreateSession)
		r.Get("/api/sessions/{sessionID}", s.handleSessionStatus)
		r.Post("/api/sessions/{sessionID}/play", s.handleSessionPlay)
		r.Post("/api/sessions/{sessionID}/pause", s.handleSessionPause)
		r.Post("/api/sessions/{sessionID}/seek", s.handleSessionSeek)
		r.Delete("/api/sessions/{sessionID}", s.handleDeleteSession)

		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
