package handlers

import (
	"context"

	"go.uber.org/zap"

	"brain2-canvas/application/commands"
	"brain2-canvas/application/commands/bus"
	"brain2-canvas/application/interaction"
)

// LinkHandler handles link creation, edits and deletion
type LinkHandler struct {
	canvas commands.Canvas
	logger *zap.Logger
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(canvas commands.Canvas, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{canvas: canvas, logger: logger}
}

// Handle executes CreateLink, UpdateLink and DeleteLink commands
func (h *LinkHandler) Handle(_ context.Context, c bus.Command) error {
	switch cmd := c.(type) {
	case *commands.CreateLinkCommand:
		source, err := parseNodeID(cmd.SourceID)
		if err != nil {
			return err
		}
		target, err := parseNodeID(cmd.TargetID)
		if err != nil {
			return err
		}
		link, err := h.canvas.CreateLink(source, target)
		if err != nil {
			h.logger.Warn("Link rejected",
				zap.String("source", cmd.SourceID),
				zap.String("target", cmd.TargetID),
				zap.Error(err))
			return err
		}
		cmd.LinkID = link.ID().String()
		return nil

	case *commands.UpdateLinkCommand:
		linkID, err := parseLinkID(cmd.LinkID)
		if err != nil {
			return err
		}
		return h.canvas.UpdateLink(linkID, interaction.LinkUpdate{
			Label:         cmd.Label,
			Bidirectional: cmd.Bidirectional,
			AnchorPos:     cmd.AnchorPos,
			Bender:        cmd.Bender,
		})

	case *commands.DeleteLinkCommand:
		linkID, err := parseLinkID(cmd.LinkID)
		if err != nil {
			return err
		}
		return h.canvas.DeleteLink(linkID)

	default:
		return unexpected(c)
	}
}
