// Package v1 wires the HTTP surface of the service: probe endpoints, the
// admission middleware, session tracking, the admin control surface and the
// drain event stream. Handlers stay thin; decisions live in the gate and the
// drain controller.
package v1

import (
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"log/slog"

	"github.com/tinoosan/draingate/internal/drain"
	"github.com/tinoosan/draingate/internal/gate"
)

// Options carries the policy knobs the handlers need.
type Options struct {
	// RetryAfter is advertised to rejected clients.
	RetryAfter time.Duration
	// AdminRestricted gates /admin/status and /admin/toggle on the admin
	// role; /admin/users always requires it.
	AdminRestricted bool
	// Backend names the session/state backend so /admin/users can say
	// whether counts are cluster-wide or pod-local.
	Backend string
	// Pod is the identifier stamped on sessions created by this process.
	Pod string
}

// Server wires handlers and middleware using Chi.
type Server struct {
	gate     *gate.Gate
	drainCtl *drain.Controller
	sessions SessionStore
	toggler  Toggler
	opts     Options
	log      *slog.Logger
	rt       *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(g *gate.Gate, ctl *drain.Controller, sessions SessionStore, toggler Toggler, opts Options, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		gate:     g,
		drainCtl: ctl,
		sessions: sessions,
		toggler:  toggler,
		opts:     opts,
		log:      logger,
		rt:       r,
	}
	r.Use(s.admission())
	r.Use(s.trackSession())
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP endpoints. Every path here except "/" is on
// the gate's bypass list; anything not declared is still subject to the
// admission middleware before falling through to chi's 404.
func (s *Server) routes() {
	s.rt.Get("/", s.index)
	s.rt.Get("/logout", s.logout)
	s.rt.Get("/events", s.events)
	s.rt.Handle("/metrics", metricsHandler())
	// Probes (liveness + readiness, both spellings)
	s.rt.Get("/health", s.healthz)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/ready", s.readyz)
	s.rt.Get("/readyz", s.readyz)
	// Admin control surface
	s.rt.Get("/admin", s.adminStatus)
	s.rt.Get("/admin/status", s.adminStatus)
	s.rt.Post("/admin/toggle", s.adminToggle)
	s.rt.Get("/admin/users", s.adminUsers)
}
