package handlers

import (
	"go.uber.org/zap"

	"brain2-canvas/application/commands"
	"brain2-canvas/application/commands/bus"
)

// RegisterAll registers a handler for every canvas command on the bus
func RegisterAll(b *bus.CommandBus, canvas commands.Canvas, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("commands")

	createNode := NewCreateNodeHandler(canvas, logger)
	updateNode := NewUpdateNodeHandler(canvas, logger)
	deleteNode := NewDeleteNodeHandler(canvas, logger)
	deleteSelection := NewDeleteSelectionHandler(canvas, logger)
	links := NewLinkHandler(canvas, logger)
	canvasWide := NewCanvasHandler(canvas, logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{&commands.CreateNodeCommand{}, createNode},
		{&commands.SetNodePropertyCommand{}, updateNode},
		{&commands.RemoveNodePropertyCommand{}, updateNode},
		{&commands.MoveNodeCommand{}, updateNode},
		{&commands.DeleteNodeCommand{}, deleteNode},
		{&commands.DeleteSelectionCommand{}, deleteSelection},
		{&commands.CreateLinkCommand{}, links},
		{&commands.UpdateLinkCommand{}, links},
		{&commands.DeleteLinkCommand{}, links},
		{&commands.SetReadOnlyCommand{}, canvasWide},
		{&commands.SaveProjectCommand{}, canvasWide},
	}
	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}
