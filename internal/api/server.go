package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/progress-tracker/internal/events"
	"github.com/terra-clan/progress-tracker/internal/health"
	"github.com/terra-clan/progress-tracker/internal/tracker"
)

// Server represents the HTTP API server
type Server struct {
	router  *chi.Mux
	tracker *tracker.Tracker
	health  *health.Registry
	hub     *events.Hub
}

// NewServer creates a new API server. hub may be nil, which disables the
// event feed.
func NewServer(t *tracker.Tracker, checks *health.Registry, hub *events.Hub) *Server {
	s := &Server{
		tracker: t,
		health:  checks,
		hub:     hub,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		// The event feed is long-lived and stays outside the request timeout
		r.Get("/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Route("/levels", func(r chi.Router) {
				r.Get("/", s.handleListLevels)
				r.Post("/", s.handleCreateLevel)
				r.Get("/{id}", s.handleGetLevel)
				r.Patch("/{id}", s.handleUpdateLevel)
				r.Delete("/{id}", s.handleDeleteLevel)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", s.handleListTasks)
				r.Post("/", s.handleCreateTask)
				r.Get("/{id}", s.handleGetTask)
				r.Patch("/{id}", s.handleUpdateTask)
				r.Delete("/{id}", s.handleDeleteTask)
			})

			r.Route("/schedules", func(r chi.Router) {
				r.Get("/", s.handleListSchedules)
				r.Post("/", s.handleCreateSchedule)
				r.Get("/{id}", s.handleGetSchedule)
				r.Patch("/{id}", s.handleUpdateSchedule)
				r.Delete("/{id}", s.handleDeleteSchedule)
			})

			r.Route("/learning-notes", func(r chi.Router) {
				r.Get("/", s.handleListNotes)
				r.Post("/", s.handleCreateNote)
				r.Get("/{id}", s.handleGetNote)
				r.Patch("/{id}", s.handleUpdateNote)
				r.Delete("/{id}", s.handleDeleteNote)
			})

			r.Get("/user-stats", s.handleGetStats)
			r.Patch("/user-stats", s.handleUpdateStats)

			r.Get("/dashboard", s.handleDashboard)
			r.Get("/calendar", s.handleCalendar)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
