package handlers

import (
	"context"

	"go.uber.org/zap"

	"brain2-canvas/application/commands"
	"brain2-canvas/application/commands/bus"
	"brain2-canvas/application/interaction"
	"brain2-canvas/domain/core/valueobjects"
)

// CreateNodeHandler handles CreateNodeCommand
type CreateNodeHandler struct {
	canvas commands.Canvas
	logger *zap.Logger
}

// NewCreateNodeHandler creates a new handler instance
func NewCreateNodeHandler(canvas commands.Canvas, logger *zap.Logger) *CreateNodeHandler {
	return &CreateNodeHandler{canvas: canvas, logger: logger}
}

// Handle executes the create node command
func (h *CreateNodeHandler) Handle(_ context.Context, c bus.Command) error {
	cmd, ok := c.(*commands.CreateNodeCommand)
	if !ok {
		return unexpected(c)
	}

	position, err := valueobjects.NewPosition(cmd.X, cmd.Y)
	if err != nil {
		return err
	}

	node, err := h.canvas.CreateNode(interaction.NewNode{
		Kind:       interaction.NodeKind(cmd.Kind),
		TypeID:     cmd.TypeID,
		Position:   position,
		Properties: cmd.Properties,
	})
	if err != nil {
		return err
	}

	cmd.NodeID = node.ID().String()
	h.logger.Debug("Node created",
		zap.String("nodeID", cmd.NodeID),
		zap.String("type", cmd.TypeID),
		zap.String("mode", string(node.Mode())))
	return nil
}
