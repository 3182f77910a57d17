package interaction

import (
	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/domain/events"
)

// rectState holds the fixed corner of the rubber band
type rectState struct {
	corner valueobjects.Position
	bounds valueobjects.Bounds
}

type rectSelectHandler struct{}

func (rectSelectHandler) Begin(e *Engine, ev PointerEvent, _ *entities.Node) error {
	corner, err := e.ctx.ToGraph(ev.Position)
	if err != nil {
		return err
	}
	e.paintSelection(e.ctx.Selection.Clear())

	bounds := valueobjects.NewBoundsFromCorners(corner, corner)
	e.ctx.rect = &rectState{corner: corner, bounds: bounds}
	e.renderer.DrawSelectionRectangle(bounds)
	return nil
}

func (rectSelectHandler) Move(e *Engine, ev PointerEvent) {
	pos, err := e.ctx.ToGraph(ev.Position)
	if err != nil {
		return
	}
	e.growRectangle(pos)
}

func (h rectSelectHandler) End(e *Engine, ev PointerEvent) {
	h.Move(e, ev)
	e.ctx.rect = nil
	e.renderer.RemoveSelectionRectangle()

	if !e.cfg().LogRectangleSelection {
		return
	}
	selected := e.ctx.Selection.NodeIDs()
	var links []valueobjects.LinkID
	for _, l := range e.ctx.Selection.Links() {
		links = append(links, l.ID())
	}
	e.log.Record(events.ActionSelect, selected, map[string]interface{}{"source": "rectangle"}, links...)
}

// growRectangle re-evaluates membership against the rectangle spanned by the
// fixed corner and pos. Only elements whose state changes are repainted.
func (e *Engine) growRectangle(pos valueobjects.Position) {
	state := e.ctx.rect
	state.bounds = valueobjects.NewBoundsFromCorners(state.corner, pos)
	e.renderer.DrawSelectionRectangle(state.bounds)

	inside := make(map[valueobjects.NodeID]bool)
	for _, n := range e.ctx.Graph.ListNodes() {
		in := !n.IsHidden() && state.bounds.Contains(n.Position())
		inside[n.ID()] = in
		e.setNodeSelected(n, in)
	}
	for _, l := range e.ctx.Graph.ListLinks() {
		in := !l.IsHidden() && inside[l.Source()] && inside[l.Target()]
		e.setLinkSelected(l, in)
	}
}
