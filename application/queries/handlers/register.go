package handlers

import (
	"fmt"

	"brain2-canvas/application/queries"
	"brain2-canvas/application/queries/bus"
	pkgerrors "brain2-canvas/pkg/errors"
)

// RegisterAll wires every canvas query handler onto the bus
func RegisterAll(b *bus.QueryBus, reader queries.CanvasReader) error {
	state := NewCanvasStateHandler(reader)
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.GetGraphDataQuery{}, NewGetGraphDataHandler(reader)},
		{queries.GetNodeQuery{}, NewGetNodeHandler(reader)},
		{queries.GetSelectionQuery{}, state},
		{queries.GetViewportQuery{}, state},
		{queries.GetSaveStatusQuery{}, state},
		{queries.ListActionsQuery{}, NewListActionsHandler(reader)},
	}
	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func unexpected(query bus.Query) error {
	return pkgerrors.NewInternalError(fmt.Sprintf("unexpected query type %T", query))
}
