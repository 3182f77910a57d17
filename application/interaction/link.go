package interaction

import (
	"go.uber.org/zap"

	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/domain/events"
)

// PendingLink is a link being drawn. It never enters the graph until it is
// committed with a valid target.
type PendingLink struct {
	Source        valueobjects.NodeID
	Candidate     *valueobjects.NodeID
	PointerOrigin ScreenPoint
	Moved         bool
	Modifiers     Modifiers
}

type linkHandler struct{}

func (linkHandler) Begin(e *Engine, ev PointerEvent, target *entities.Node) error {
	e.ctx.link = &PendingLink{
		Source:        target.ID(),
		PointerOrigin: ev.Position,
		Modifiers:     ev.Modifiers,
	}
	return nil
}

func (linkHandler) Move(e *Engine, ev PointerEvent) {
	pending := e.ctx.link
	if travel(ev.Position, pending.PointerOrigin) > e.cfg().ClickTolerance {
		pending.Moved = true
	}

	source, err := e.ctx.Graph.GetNodeByID(pending.Source)
	if err != nil {
		return
	}
	pos, err := e.ctx.ToGraph(ev.Position)
	if err != nil {
		return
	}

	end := pos
	pending.Candidate = nil
	if candidate := e.ctx.topmostNodeAt(pos, e.radiusFor); candidate != nil {
		id := candidate.ID()
		pending.Candidate = &id
		end = candidate.Position()
	}
	e.renderer.DrawPendingLink(source.Position(), end)
}

func (h linkHandler) End(e *Engine, ev PointerEvent) {
	h.Move(e, ev)
	pending := e.ctx.link
	e.ctx.link = nil
	e.renderer.RemovePendingLink()

	if !pending.Moved {
		// clicks are suppressed while drawing; deliver it now
		e.click(pending.Source, pending.Modifiers)
		return
	}

	if pending.Candidate == nil {
		e.logger.Debug("link cancelled", zap.String("source", pending.Source.String()))
		return
	}

	link, err := e.ctx.Graph.AddLink(pending.Source, *pending.Candidate)
	if err != nil {
		e.metrics.GestureRejected(GestureLink.String(), "invalid_link")
		e.logger.Warn("link discarded",
			zap.String("source", pending.Source.String()),
			zap.String("target", pending.Candidate.String()),
			zap.Error(err))
		return
	}

	geo, err := e.ctx.Graph.LinkGeometry(link)
	if err == nil {
		e.renderer.DrawLink(geo)
	}
	e.log.Record(events.ActionCreateLink, []valueobjects.NodeID{link.Source(), link.Target()}, nil, link.ID())
}
