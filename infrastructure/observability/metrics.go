// Package observability holds the prometheus collector and the otel tracer
// provider of the canvas engine.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the engine. It implements the
// metric hooks of the interaction engine, the action log, both buses and the
// persistence decorator.
type Collector struct {
	registry *prometheus.Registry

	// Interaction metrics
	Gestures         *prometheus.CounterVec
	GestureRejects   *prometheus.CounterVec
	MergeResolutions *prometheus.CounterVec

	// Action log metrics
	Actions      *prometheus.CounterVec
	Saves        *prometheus.CounterVec
	SaveDuration *prometheus.HistogramVec

	// Bus metrics
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Persistence metrics
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
	BreakerState    *prometheus.GaugeVec
}

// NewCollector creates a collector on its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		Gestures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gestures_started_total",
				Help:      "Total number of gestures started",
			},
			[]string{"kind"},
		),
		GestureRejects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gestures_rejected_total",
				Help:      "Total number of gestures that ended without a mutation",
			},
			[]string{"kind", "reason"},
		),
		MergeResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "merge_resolutions_total",
				Help:      "Outcomes of drop-on-node merges",
			},
			[]string{"outcome"},
		),
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_recorded_total",
				Help:      "Total number of actions appended to the log",
			},
			[]string{"name", "merged"},
		),
		Saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saves_total",
				Help:      "Total number of save attempts",
			},
			[]string{"operation", "status"},
		),
		SaveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "save_duration_seconds",
				Help:      "Save duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bus_requests_total",
				Help:      "Total number of commands and queries handled",
			},
			[]string{"bus", "name", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "bus_request_duration_seconds",
				Help:      "Command and query duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"bus", "name"},
		),
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of persistence operations",
			},
			[]string{"operation", "backend", "status"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Persistence operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "backend"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
	}

	registry.MustRegister(
		c.Gestures,
		c.GestureRejects,
		c.MergeResolutions,
		c.Actions,
		c.Saves,
		c.SaveDuration,
		c.Requests,
		c.RequestDuration,
		c.StoreOperations,
		c.StoreDuration,
		c.BreakerState,
	)
	return c
}

// GestureStarted counts a gesture entering its state machine
func (c *Collector) GestureStarted(kind string) {
	c.Gestures.WithLabelValues(kind).Inc()
}

// GestureRejected counts a gesture that ended without mutating the graph
func (c *Collector) GestureRejected(kind, reason string) {
	c.GestureRejects.WithLabelValues(kind, reason).Inc()
}

// MergeResolved counts the outcome of a drop-on-node merge
func (c *Collector) MergeResolved(outcome string) {
	c.MergeResolutions.WithLabelValues(outcome).Inc()
}

// ActionRecorded counts an appended or merged action
func (c *Collector) ActionRecorded(name string, merged bool) {
	label := "false"
	if merged {
		label = "true"
	}
	c.Actions.WithLabelValues(name, label).Inc()
}

// SaveCompleted records the outcome of a save callback
func (c *Collector) SaveCompleted(operation string, err error, duration time.Duration) {
	c.Saves.WithLabelValues(operation, status(err)).Inc()
	c.SaveDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// CommandHandled records a command dispatched over the command bus
func (c *Collector) CommandHandled(name string, err error, duration time.Duration) {
	c.Requests.WithLabelValues("command", name, status(err)).Inc()
	c.RequestDuration.WithLabelValues("command", name).Observe(duration.Seconds())
}

// QueryHandled records a query dispatched over the query bus
func (c *Collector) QueryHandled(name string, err error, duration time.Duration) {
	c.Requests.WithLabelValues("query", name, status(err)).Inc()
	c.RequestDuration.WithLabelValues("query", name).Observe(duration.Seconds())
}

// StoreOperation records one persistence call
func (c *Collector) StoreOperation(operation, backend string, err error, duration time.Duration) {
	c.StoreOperations.WithLabelValues(operation, backend, status(err)).Inc()
	c.StoreDuration.WithLabelValues(operation, backend).Observe(duration.Seconds())
}

// BreakerStateChanged publishes the state of a named circuit breaker
func (c *Collector) BreakerStateChanged(name string, state int) {
	c.BreakerState.WithLabelValues(name).Set(float64(state))
}

// Registry returns the Prometheus registry for this collector
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
