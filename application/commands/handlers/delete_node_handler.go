package handlers

import (
	"context"

	"go.uber.org/zap"

	"brain2-canvas/application/commands"
	"brain2-canvas/application/commands/bus"
)

// DeleteNodeHandler handles node deletion commands
type DeleteNodeHandler struct {
	canvas commands.Canvas
	logger *zap.Logger
}

// NewDeleteNodeHandler creates a new delete node handler
func NewDeleteNodeHandler(canvas commands.Canvas, logger *zap.Logger) *DeleteNodeHandler {
	return &DeleteNodeHandler{canvas: canvas, logger: logger}
}

// Handle deletes the node together with its links
func (h *DeleteNodeHandler) Handle(_ context.Context, c bus.Command) error {
	cmd, ok := c.(*commands.DeleteNodeCommand)
	if !ok {
		return unexpected(c)
	}
	nodeID, err := parseNodeID(cmd.NodeID)
	if err != nil {
		return err
	}
	if err := h.canvas.DeleteNode(nodeID); err != nil {
		return err
	}
	h.logger.Debug("Node deleted", zap.String("nodeID", cmd.NodeID))
	return nil
}
