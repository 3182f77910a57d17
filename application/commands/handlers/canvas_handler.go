package handlers

import (
	"context"

	"go.uber.org/zap"

	"brain2-canvas/application/commands"
	"brain2-canvas/application/commands/bus"
)

// CanvasHandler handles canvas-wide commands: read-only mode and saving
type CanvasHandler struct {
	canvas commands.Canvas
	logger *zap.Logger
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(canvas commands.Canvas, logger *zap.Logger) *CanvasHandler {
	return &CanvasHandler{canvas: canvas, logger: logger}
}

// Handle executes SetReadOnly and SaveProject commands
func (h *CanvasHandler) Handle(ctx context.Context, c bus.Command) error {
	switch cmd := c.(type) {
	case *commands.SetReadOnlyCommand:
		h.canvas.SetReadOnly(cmd.ReadOnly)
		h.logger.Info("Canvas mode changed", zap.Bool("readOnly", cmd.ReadOnly))
		return nil
	case *commands.SaveProjectCommand:
		return h.canvas.Save(ctx)
	default:
		return unexpected(c)
	}
}
