package handlers

import (
	"context"

	"go.uber.org/zap"

	"brain2-canvas/application/commands"
	"brain2-canvas/application/commands/bus"
	"brain2-canvas/domain/core/valueobjects"
	pkgerrors "brain2-canvas/pkg/errors"
)

// UpdateNodeHandler handles property edits and programmatic moves
type UpdateNodeHandler struct {
	canvas commands.Canvas
	logger *zap.Logger
}

// NewUpdateNodeHandler creates a new update node handler
func NewUpdateNodeHandler(canvas commands.Canvas, logger *zap.Logger) *UpdateNodeHandler {
	return &UpdateNodeHandler{canvas: canvas, logger: logger}
}

// Handle executes SetNodeProperty, RemoveNodeProperty and MoveNode commands
func (h *UpdateNodeHandler) Handle(_ context.Context, c bus.Command) error {
	switch cmd := c.(type) {
	case *commands.SetNodePropertyCommand:
		nodeID, err := parseNodeID(cmd.NodeID)
		if err != nil {
			return err
		}
		kind, err := valueobjects.ParsePropertyKind(cmd.Kind)
		if err != nil {
			h.logger.Warn("Rejected property with unknown kind",
				zap.String("nodeID", cmd.NodeID),
				zap.String("property", cmd.Name),
				zap.String("kind", cmd.Kind))
			return pkgerrors.NewUnknownPropertyKindError(cmd.Name, cmd.Kind)
		}
		return h.canvas.SetNodeProperty(nodeID, cmd.Name, kind, cmd.Value)

	case *commands.RemoveNodePropertyCommand:
		nodeID, err := parseNodeID(cmd.NodeID)
		if err != nil {
			return err
		}
		return h.canvas.RemoveNodeProperty(nodeID, cmd.Name)

	case *commands.MoveNodeCommand:
		nodeID, err := parseNodeID(cmd.NodeID)
		if err != nil {
			return err
		}
		position, err := valueobjects.NewPosition(cmd.X, cmd.Y)
		if err != nil {
			return err
		}
		return h.canvas.MoveNode(nodeID, position)

	default:
		return unexpected(c)
	}
}
