package handlers

import (
	"context"

	"brain2-canvas/application/queries"
	"brain2-canvas/application/queries/bus"
	"brain2-canvas/domain/events"
)

// ListActionsHandler pages through the action log
type ListActionsHandler struct {
	reader queries.CanvasReader
}

// NewListActionsHandler creates a new handler
func NewListActionsHandler(reader queries.CanvasReader) *ListActionsHandler {
	return &ListActionsHandler{reader: reader}
}

// Handle executes the query. A zero limit returns every matching action.
func (h *ListActionsHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.ListActionsQuery)
	if !ok {
		return nil, unexpected(query)
	}

	all := h.reader.Actions()
	matched := make([]events.Action, 0, len(all))
	for _, a := range all {
		if q.Name == "" || a.Name == q.Name {
			matched = append(matched, a)
		}
	}

	page := matched
	if q.Limit > 0 && len(page) > q.Limit {
		page = page[len(page)-q.Limit:]
	}
	return &queries.ListActionsResult{Actions: page, Total: len(matched)}, nil
}
