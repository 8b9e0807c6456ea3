package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/wisched/internal/config"
	"github.com/me/wisched/internal/monitor"
	"github.com/me/wisched/internal/store"
)

// Server is the wisched REST API server. Simulations requested over the API
// run synchronously; completed runs are persisted to the store and their job
// records are fed to the monitoring session for live consumers.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	store     store.Store
	session   *monitor.Session
}

// New creates a new Server with all routes registered.
// session may be nil; the monitoring endpoints then report 404.
func New(cfg config.ServerConfig, st store.Store, session *monitor.Session, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		store:     st,
		session:   session,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	// API routes (JSON)
	r.Route("/api/v1", func(r chi.Router) {
		// Discovery
		r.Get("/", s.handleDiscovery)

		// Health
		r.Get("/health", s.handleHealth)

		// Simulation runs
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Post("/", s.handleCreateRun)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRun)
				r.Delete("/", s.handleDeleteRun)
				r.Get("/jobs", s.handleListRunJobs)
			})
		})

		// Policy comparison (not persisted)
		r.Post("/compare", s.handleCompare)

		// Live monitoring
		r.Get("/monitor", s.handleMonitorSnapshot)
		r.Route("/sse", func(r chi.Router) {
			r.Get("/live", s.handleSSELive)
		})
	})
}
