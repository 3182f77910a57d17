// Package rest exposes the running canvas over HTTP for operators: health,
// save status, read models and Prometheus metrics.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"brain2-canvas/application/commands/bus"
	querybus "brain2-canvas/application/queries/bus"
	"brain2-canvas/interfaces/http/rest/handlers"
	"brain2-canvas/interfaces/http/rest/middleware"
	"brain2-canvas/pkg/common"
)

// ReadinessCheck reports whether the service can accept work
type ReadinessCheck func(ctx context.Context) error

// Option configures a Router
type Option func(*Router)

// WithMetrics mounts a metrics handler at /metrics
func WithMetrics(h http.Handler) Option {
	return func(rt *Router) { rt.metrics = h }
}

// WithReadiness sets the check behind /ready
func WithReadiness(check ReadinessCheck) Option {
	return func(rt *Router) { rt.ready = check }
}

// WithDebugErrors includes stack traces and raw messages in error bodies
func WithDebugErrors(debug bool) Option {
	return func(rt *Router) { rt.debug = debug }
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	metrics    http.Handler
	ready      ReadinessCheck
	debug      bool
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
	opts ...Option,
) *Router {
	rt := &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errorWriter := handlers.NewErrorWriter(rt.logger, rt.debug)

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorWriter.Recover)
	router.Use(middleware.Logger(rt.logger, "/health", "/ready", "/metrics"))
	router.Use(chimiddleware.Timeout(30 * time.Second))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck(errorWriter))
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics)
	}

	canvas := handlers.NewCanvasHandler(rt.commandBus, rt.queryBus, errorWriter, rt.logger)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", canvas.GetStatus)
		r.Get("/graph", canvas.GetGraph)
		r.Get("/nodes/{nodeID}", canvas.GetNode)
		r.Get("/selection", canvas.GetSelection)
		r.Get("/viewport", canvas.GetViewport)
		r.Get("/actions", canvas.ListActions)
		r.Post("/save", canvas.Save)
	})

	router.NotFound(errorWriter.NotFound)

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports unavailable while the check fails, typically
// because the persistence breaker is open.
func (rt *Router) readinessCheck(errorWriter *handlers.ErrorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rt.ready != nil {
			if err := rt.ready(r.Context()); err != nil {
				errorWriter.Write(w, r, err)
				return
			}
		}
		common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
