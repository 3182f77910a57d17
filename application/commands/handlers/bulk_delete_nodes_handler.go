package handlers

import (
	"context"

	"go.uber.org/zap"

	"brain2-canvas/application/commands"
	"brain2-canvas/application/commands/bus"
)

// DeleteSelectionHandler deletes every selected node and link
type DeleteSelectionHandler struct {
	canvas commands.Canvas
	logger *zap.Logger
}

// NewDeleteSelectionHandler creates a new delete selection handler
func NewDeleteSelectionHandler(canvas commands.Canvas, logger *zap.Logger) *DeleteSelectionHandler {
	return &DeleteSelectionHandler{canvas: canvas, logger: logger}
}

// Handle asks for confirmation through the canvas and reports how many
// elements were removed
func (h *DeleteSelectionHandler) Handle(_ context.Context, c bus.Command) error {
	cmd, ok := c.(*commands.DeleteSelectionCommand)
	if !ok {
		return unexpected(c)
	}
	removed, err := h.canvas.DeleteSelection()
	if err != nil {
		return err
	}
	cmd.Removed = removed
	h.logger.Info("Selection deleted", zap.Int("removed", removed))
	return nil
}
