package interaction

import (
	"fmt"

	"go.uber.org/zap"

	"brain2-canvas/application/ports"
	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/domain/events"
	pkgerrors "brain2-canvas/pkg/errors"
)

// DragState is the ephemeral state of a node drag. Every dragged node keeps
// its own graph-space origin so repeated moves never accumulate drift.
type DragState struct {
	Primary       valueobjects.NodeID
	PointerOrigin ScreenPoint
	Modifiers     Modifiers

	order   []valueobjects.NodeID
	origins map[valueobjects.NodeID]valueobjects.Position
}

// Origin returns the recorded origin of a dragged node
func (d *DragState) Origin(id valueobjects.NodeID) (valueobjects.Position, bool) {
	pos, ok := d.origins[id]
	return pos, ok
}

// NodeIDs returns the dragged nodes, primary first
func (d *DragState) NodeIDs() []valueobjects.NodeID {
	out := make([]valueobjects.NodeID, len(d.order))
	copy(out, d.order)
	return out
}

func (d *DragState) add(n *entities.Node) {
	if _, exists := d.origins[n.ID()]; exists {
		return
	}
	d.order = append(d.order, n.ID())
	d.origins[n.ID()] = n.Position()
}

type dragHandler struct{}

func (dragHandler) Begin(e *Engine, ev PointerEvent, target *entities.Node) error {
	state := &DragState{
		Primary:       target.ID(),
		PointerOrigin: ev.Position,
		Modifiers:     ev.Modifiers,
		origins:       make(map[valueobjects.NodeID]valueobjects.Position),
	}
	state.add(target)
	if e.ctx.Selection.HasNode(target.ID()) {
		for _, n := range e.ctx.Selection.Nodes() {
			state.add(n)
		}
	}
	e.ctx.drag = state
	return nil
}

func (dragHandler) Move(e *Engine, ev PointerEvent) {
	e.applyDrag(ev.Position)
}

func (dragHandler) End(e *Engine, ev PointerEvent) {
	state := e.ctx.drag
	defer func() { e.ctx.drag = nil }()

	if travel(ev.Position, state.PointerOrigin) <= e.cfg().ClickTolerance {
		e.restoreDragOrigins()
		e.click(state.Primary, state.Modifiers)
		return
	}

	e.applyDrag(ev.Position)
	moved := state.NodeIDs()
	dx, dy := e.ctx.ScreenDeltaToGraph(ev.Position.X-state.PointerOrigin.X, ev.Position.Y-state.PointerOrigin.Y)

	primary, err := e.ctx.Graph.GetNodeByID(state.Primary)
	if err != nil {
		e.logger.Warn("dragged node vanished", zap.Error(err))
		return
	}

	candidates := e.ctx.Graph.NodesNear(primary.Position(), e.cfg().MergeRadius, moved...)
	switch len(candidates) {
	case 0:
		e.metrics.MergeResolved("none")
	case 1:
		remaining, merged := e.mergeOnDrop(primary, candidates[0], moved)
		if merged {
			if len(remaining) > 0 {
				e.recordMove(remaining, dx, dy)
			}
			return
		}
	default:
		err := pkgerrors.NewAmbiguousMergeTargetError(len(candidates))
		e.metrics.MergeResolved("ambiguous")
		e.logger.Warn("merge skipped",
			zap.String("node", primary.ID().String()),
			zap.Int("candidates", len(candidates)),
			zap.Error(err))
	}
	e.recordMove(moved, dx, dy)
}

// applyDrag places every dragged node at its origin plus the pointer delta
// converted to graph units
func (e *Engine) applyDrag(p ScreenPoint) {
	state := e.ctx.drag
	dx, dy := e.ctx.ScreenDeltaToGraph(p.X-state.PointerOrigin.X, p.Y-state.PointerOrigin.Y)

	for _, id := range state.order {
		node, err := e.ctx.Graph.GetNodeByID(id)
		if err != nil {
			continue
		}
		pos, err := state.origins[id].Translate(dx, dy)
		if err != nil {
			e.logger.Warn("drag produced invalid position", zap.String("node", id.String()), zap.Error(err))
			continue
		}
		e.moveNode(node, pos)
	}
}

func (e *Engine) restoreDragOrigins() {
	state := e.ctx.drag
	for _, id := range state.order {
		node, err := e.ctx.Graph.GetNodeByID(id)
		if err != nil {
			continue
		}
		if origin := state.origins[id]; !node.Position().Equals(origin) {
			e.moveNode(node, origin)
		}
	}
}

func (e *Engine) recordMove(ids []valueobjects.NodeID, dx, dy float64) {
	e.log.Record(events.ActionMove, ids, map[string]interface{}{"dx": dx, "dy": dy})
}

// mergeOnDrop offers to merge the dragged node into the single node under
// it. It returns the moved nodes that still exist and whether the merge
// went ahead.
func (e *Engine) mergeOnDrop(dragged, candidate *entities.Node, moved []valueobjects.NodeID) ([]valueobjects.NodeID, bool) {
	typeName := candidate.TypeID()
	if desc, ok := e.palette.GetItemByID(candidate.TypeID()); ok && desc.Name != "" {
		typeName = desc.Name
	}

	question := fmt.Sprintf("Merge the properties of the dropped node into this %s?", typeName)
	if !e.confirmer.Confirm(ports.QuestionMerge, question) {
		e.metrics.MergeResolved("declined")
		return moved, false
	}

	merged, skipped, err := e.ctx.Graph.MergeNodeProperties(dragged.ID(), candidate.ID())
	if err != nil {
		e.logger.Warn("merge failed", zap.Error(err))
		e.metrics.MergeResolved("failed")
		return moved, false
	}
	for _, skip := range skipped {
		e.logger.Warn("property skipped during merge",
			zap.String("from", dragged.ID().String()),
			zap.String("into", candidate.ID().String()),
			zap.Error(skip))
		if appErr := pkgerrors.GetAppError(skip); appErr != nil {
			e.notifier.Notify(ports.NotifyWarning, appErr.Message)
		}
	}

	e.renderer.DrawNode(candidate.Variant())
	e.log.Record(events.ActionUpdateNode, []valueobjects.NodeID{candidate.ID()}, map[string]interface{}{
		"mergedFrom": dragged.ID().String(),
		"properties": merged,
		"skipped":    len(skipped),
	})
	e.metrics.MergeResolved("merged")

	if !e.cfg().ConfirmMergeDelete ||
		!e.confirmer.Confirm(ports.QuestionMergeDelete, "Delete the dropped node?") {
		return moved, true
	}

	if err := e.absorbNode(dragged, candidate); err != nil {
		e.logger.Warn("could not delete merged node", zap.String("node", dragged.ID().String()), zap.Error(err))
		return moved, true
	}

	remaining := make([]valueobjects.NodeID, 0, len(moved))
	for _, id := range moved {
		if !id.Equals(dragged.ID()) {
			remaining = append(remaining, id)
		}
	}
	return remaining, true
}

// absorbNode re-homes the links of from onto into and deletes from, logging
// one action per structural change
func (e *Engine) absorbNode(from, into *entities.Node) error {
	relinked, dropped, err := e.ctx.Graph.RelinkNode(from.ID(), into.ID())
	if err != nil {
		return err
	}
	for _, link := range relinked {
		e.redrawLink(link)
		e.log.Record(events.ActionUpdateLink, []valueobjects.NodeID{link.Source(), link.Target()},
			map[string]interface{}{"relinkedFrom": from.ID().String()}, link.ID())
	}
	for _, link := range dropped {
		e.forgetLink(link)
	}
	return e.deleteNode(from)
}
