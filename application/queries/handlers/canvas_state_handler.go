package handlers

import (
	"context"

	"brain2-canvas/application/queries"
	"brain2-canvas/application/queries/bus"
	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/pkg/utils"
)

// CanvasStateHandler answers the selection, viewport and save status queries
type CanvasStateHandler struct {
	reader queries.CanvasReader
}

// NewCanvasStateHandler creates a new handler
func NewCanvasStateHandler(reader queries.CanvasReader) *CanvasStateHandler {
	return &CanvasStateHandler{reader: reader}
}

// Handle executes the query
func (h *CanvasStateHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	switch query.(type) {
	case queries.GetSelectionQuery:
		result := &queries.SelectionResult{NodeIDs: []string{}, LinkIDs: []string{}}
		for _, id := range h.reader.SelectedNodeIDs() {
			result.NodeIDs = append(result.NodeIDs, id.String())
		}
		for _, id := range h.reader.SelectedLinkIDs() {
			result.LinkIDs = append(result.LinkIDs, id.String())
		}
		return result, nil

	case queries.GetViewportQuery:
		return &queries.ViewportResult{
			Viewport:      *aggregates.SnapshotViewport(h.reader.Viewport()),
			ActiveGesture: h.reader.ActiveGesture().String(),
		}, nil

	case queries.GetSaveStatusQuery:
		status := h.reader.SaveStatus()
		result := &queries.SaveStatusResult{
			Dirty:     status.Dirty,
			Saving:    status.Saving,
			LastError: status.LastError,
			Actions:   len(h.reader.Actions()),
		}
		if !status.LastSaved.IsZero() {
			result.LastSaved = utils.FormatRFC3339(status.LastSaved)
		}
		return result, nil

	default:
		return nil, unexpected(query)
	}
}
