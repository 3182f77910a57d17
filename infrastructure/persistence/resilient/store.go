// Package resilient decorates a Persistence with a circuit breaker, a per-call
// timeout, tracing spans and metrics. Saves are best effort, so an open
// breaker fails fast instead of stacking up slow remote calls behind the
// autosave policy.
package resilient

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"brain2-canvas/application/ports"
	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/events"
	pkgerrors "brain2-canvas/pkg/errors"
)

// Recorder receives the outcome of every store call
type Recorder interface {
	StoreOperation(operation, backend string, err error, duration time.Duration)
	BreakerStateChanged(name string, state int)
}

type nopRecorder struct{}

func (nopRecorder) StoreOperation(string, string, error, time.Duration) {}
func (nopRecorder) BreakerStateChanged(string, int)                     {}

// Settings configures the decorator
type Settings struct {
	Name        string
	Backend     string
	MaxFailures uint32
	OpenTimeout time.Duration
	CallTimeout time.Duration
	Tracer      trace.Tracer
	Recorder    Recorder
	Logger      *zap.Logger
}

// Store is the decorated persistence
type Store struct {
	next     ports.Persistence
	backend  string
	cb       *gobreaker.CircuitBreaker
	timeout  time.Duration
	tracer   trace.Tracer
	recorder Recorder
	logger   *zap.Logger
}

// New wraps next
func New(next ports.Persistence, settings Settings) *Store {
	if settings.Name == "" {
		settings.Name = "persistence"
	}
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 5
	}
	if settings.OpenTimeout == 0 {
		settings.OpenTimeout = 30 * time.Second
	}
	if settings.Tracer == nil {
		settings.Tracer = otel.Tracer("brain2-canvas/persistence")
	}
	if settings.Recorder == nil {
		settings.Recorder = nopRecorder{}
	}
	if settings.Logger == nil {
		settings.Logger = zap.NewNop()
	}

	s := &Store{
		next:     next,
		backend:  settings.Backend,
		timeout:  settings.CallTimeout,
		tracer:   settings.Tracer,
		recorder: settings.Recorder,
		logger:   settings.Logger,
	}
	s.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			s.recorder.BreakerStateChanged(name, int(to))
		},
		// Conflicts and missing projects are answers, not outages
		IsSuccessful: func(err error) bool {
			return err == nil || pkgerrors.IsConflict(err) || pkgerrors.IsNotFound(err)
		},
	})
	return s
}

// SaveAction forwards one action
func (s *Store) SaveAction(ctx context.Context, action events.Action) error {
	_, err := s.execute(ctx, "saveAction", func(ctx context.Context) (interface{}, error) {
		return nil, s.next.SaveAction(ctx, action)
	}, attribute.String("action.name", string(action.Name)), attribute.String("action.id", action.ID))
	return err
}

// SaveProject forwards one snapshot
func (s *Store) SaveProject(ctx context.Context, project aggregates.GraphSnapshot, quiet bool) error {
	_, err := s.execute(ctx, "saveProject", func(ctx context.Context) (interface{}, error) {
		return nil, s.next.SaveProject(ctx, project, quiet)
	},
		attribute.String("project.id", project.ID),
		attribute.Int("project.nodes", len(project.Nodes)),
		attribute.Int("project.links", len(project.Links)),
		attribute.Bool("save.quiet", quiet))
	return err
}

// LoadProject forwards to the wrapped store when it can load
func (s *Store) LoadProject(ctx context.Context, projectID string) (aggregates.GraphSnapshot, error) {
	loader, ok := s.next.(ports.ProjectLoader)
	if !ok {
		return aggregates.GraphSnapshot{}, pkgerrors.NewInternalError("persistence backend cannot load projects")
	}
	result, err := s.execute(ctx, "loadProject", func(ctx context.Context) (interface{}, error) {
		return loader.LoadProject(ctx, projectID)
	}, attribute.String("project.id", projectID))
	if err != nil {
		return aggregates.GraphSnapshot{}, err
	}
	return result.(aggregates.GraphSnapshot), nil
}

// State returns the breaker state
func (s *Store) State() gobreaker.State {
	return s.cb.State()
}

func (s *Store) execute(ctx context.Context, operation string, fn func(context.Context) (interface{}, error), attrs ...attribute.KeyValue) (interface{}, error) {
	ctx, span := s.tracer.Start(ctx, "persistence."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs, attribute.String("persistence.backend", s.backend))...))
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = pkgerrors.NewUnavailableError(s.cb.Name()).WithCause(err)
	}
	s.recorder.StoreOperation(operation, s.backend, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("Persistence operation failed",
			zap.String("operation", operation),
			zap.String("backend", s.backend),
			zap.Error(err))
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return result, nil
}
