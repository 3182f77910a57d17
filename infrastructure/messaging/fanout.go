// Package messaging fans committed actions out to secondary sinks.
package messaging

import (
	"context"

	"go.uber.org/zap"

	"brain2-canvas/application/ports"
	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/events"
	pkgerrors "brain2-canvas/pkg/errors"
)

// Fanout is a Persistence that stores through a primary backend and also
// hands every saved action to secondary sinks. Sink failures are logged and
// never fail the save; the primary store is the source of truth.
type Fanout struct {
	primary ports.Persistence
	sinks   []ports.ActionSink
	logger  *zap.Logger
}

// NewFanout creates a fanout over primary
func NewFanout(primary ports.Persistence, logger *zap.Logger, sinks ...ports.ActionSink) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{primary: primary, sinks: sinks, logger: logger}
}

// SaveAction stores the action, then forwards it to each sink
func (f *Fanout) SaveAction(ctx context.Context, action events.Action) error {
	if err := f.primary.SaveAction(ctx, action); err != nil {
		return err
	}
	for _, sink := range f.sinks {
		if err := sink.SaveAction(ctx, action); err != nil {
			f.logger.Warn("Action sink failed",
				zap.String("actionID", action.ID),
				zap.String("action", string(action.Name)),
				zap.Error(err))
		}
	}
	return nil
}

// SaveProject stores the snapshot through the primary backend only
func (f *Fanout) SaveProject(ctx context.Context, project aggregates.GraphSnapshot, quiet bool) error {
	return f.primary.SaveProject(ctx, project, quiet)
}

// LoadProject reads through the primary backend when it can load
func (f *Fanout) LoadProject(ctx context.Context, projectID string) (aggregates.GraphSnapshot, error) {
	if loader, ok := f.primary.(ports.ProjectLoader); ok {
		return loader.LoadProject(ctx, projectID)
	}
	return aggregates.GraphSnapshot{}, pkgerrors.NewInternalError("primary persistence cannot load projects")
}
