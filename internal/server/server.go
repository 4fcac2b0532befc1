// Package server exposes the scheduling engine over a JSON HTTP API.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/utkarsh5026/makespan/internal/store"
)

// Server is the makespan REST API.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	store     store.Store // nil disables the run archive
	startTime time.Time

	maxTasks      int
	maxProcessors int
	searchTimeout time.Duration
}

// Request limits used when no option overrides them.
const (
	DefaultMaxTasks      = 64
	DefaultMaxProcessors = 1024
)

// Option configures optional Server settings.
type Option func(*Server)

// WithMaxTasks rejects instances with more than n tasks.
func WithMaxTasks(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxTasks = n
		}
	}
}

// WithMaxProcessors rejects instances with more than n processors. Schedules
// keep per-processor state, so this bounds the memory of a single request.
func WithMaxProcessors(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxProcessors = n
		}
	}
}

// WithSearchTimeout caps the optimal search of a single request. Requests
// may ask for less, never for more.
func WithSearchTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.searchTimeout = d
		}
	}
}

// New creates a Server with all routes registered. st may be nil.
func New(st store.Store, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		logger:        logger.With("component", "server"),
		store:         st,
		startTime:     time.Now(),
		maxTasks:      DefaultMaxTasks,
		maxProcessors: DefaultMaxProcessors,
		searchTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
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

	r.Use(middleware.RealIP)
	r.Use(traced(s.logger))
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", s.handleListSchedules)
			r.Post("/", s.handleCreateSchedule)
			r.Post("/validate", s.handleValidateSchedule)
			r.Get("/{id}", s.handleGetSchedule)
			r.Delete("/{id}", s.handleDeleteSchedule)
		})
	})
}
