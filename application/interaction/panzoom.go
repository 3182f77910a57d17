package interaction

import (
	"math"

	"go.uber.org/zap"

	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/domain/events"
	pkgerrors "brain2-canvas/pkg/errors"
)

// Trigger distinguishes coarse key-driven steps from fine wheel/drag steps
type Trigger int

const (
	TriggerDiscrete Trigger = iota
	TriggerContinuous
)

// ZoomDirection is in (shrink the visible area) or out
type ZoomDirection int

const (
	ZoomIn ZoomDirection = iota
	ZoomOut
)

// panState is a background drag with the pan modifier
type panState struct {
	pointerOrigin  ScreenPoint
	viewportOrigin valueobjects.Viewport
}

type panHandler struct{}

func (panHandler) Begin(e *Engine, ev PointerEvent, _ *entities.Node) error {
	e.ctx.pan = &panState{pointerOrigin: ev.Position, viewportOrigin: e.ctx.Viewport}
	return nil
}

// Move pans by the pointer delta expressed as a fraction of the screen, so
// the graph follows the pointer.
func (panHandler) Move(e *Engine, ev PointerEvent) {
	state := e.ctx.pan
	fx := -(ev.Position.X - state.pointerOrigin.X) / e.ctx.Screen.Width
	fy := -(ev.Position.Y - state.pointerOrigin.Y) / e.ctx.Screen.Height
	next, err := state.viewportOrigin.Pan(fx, fy)
	if err != nil {
		return
	}
	if next.Equals(e.ctx.Viewport) {
		return
	}
	e.setViewport(next, events.ActionPan)
}

func (h panHandler) End(e *Engine, ev PointerEvent) {
	h.Move(e, ev)
	e.ctx.pan = nil
}

func (e *Engine) panFactor(t Trigger) float64 {
	if t == TriggerDiscrete {
		return e.cfg().DiscretePanFactor
	}
	return e.cfg().ContinuousPanFactor
}

func (e *Engine) zoomFactor(t Trigger) float64 {
	if t == TriggerDiscrete {
		return e.cfg().DiscreteZoomFactor
	}
	return e.cfg().ContinuousZoomFactor
}

// pan shifts the viewport by its size times the pan factor along each
// direction component
func (e *Engine) pan(dirX, dirY float64, t Trigger) {
	if dirX == 0 && dirY == 0 {
		return
	}
	factor := e.panFactor(t)
	next, err := e.ctx.Viewport.Pan(dirX*factor, dirY*factor)
	if err != nil {
		e.logger.Warn("pan rejected", zap.Error(err))
		return
	}
	e.setViewport(next, events.ActionPan)
}

// zoom scales the viewport around the last known pointer position. It is
// skipped until a pointer position has been observed.
func (e *Engine) zoom(dir ZoomDirection, t Trigger) bool {
	p, ok := e.ctx.Pointer()
	if !ok {
		e.logger.Debug("zoom skipped: pointer position unknown")
		return false
	}

	factor := e.zoomFactor(t)
	v := e.ctx.Viewport
	width, height := v.Width()*factor, v.Height()*factor
	if dir == ZoomIn {
		width, height = v.Width()/factor, v.Height()/factor
	}

	fx, fy := e.ctx.ScreenFraction(p)
	next, err := v.Resize(width, height, fx, fy)
	if err != nil {
		e.logger.Warn("zoom rejected", zap.Error(err))
		return false
	}
	e.setViewport(next, events.ActionZoom)
	return true
}

// zoomToFill fits the given nodes into view. The bounding box of their
// centers is padded by twice the largest node radius on every side; the axis
// with the larger required-to-current ratio decides the scale so the aspect
// ratio is kept.
func (e *Engine) zoomToFill(nodes []*entities.Node) error {
	if len(nodes) == 0 {
		return pkgerrors.NewValidationError("no nodes to fit")
	}

	centers := make([]valueobjects.Position, 0, len(nodes))
	maxRadius := 0.0
	for _, n := range nodes {
		centers = append(centers, n.Position())
		maxRadius = math.Max(maxRadius, e.radiusFor(n))
	}
	box, _ := valueobjects.BoundsOf(centers)
	box = box.Pad(2 * maxRadius)

	v := e.ctx.Viewport
	scale := math.Max(box.Width()/v.Width(), box.Height()/v.Height())
	width, height := v.Width()*scale, v.Height()*scale
	center := box.Center()

	next, err := valueobjects.NewViewport(center.X()-width/2, center.Y()-height/2, width, height)
	if err != nil {
		return err
	}
	e.setViewport(next, events.ActionZoom)
	return nil
}

// nudge moves the selected nodes by a fraction of the viewport size and logs
// a single move action
func (e *Engine) nudge(dirX, dirY float64) {
	nodes := e.ctx.Selection.Nodes()
	if len(nodes) == 0 {
		return
	}
	f := e.cfg().NudgeFraction
	dx, dy := dirX*e.ctx.Viewport.Width()*f, dirY*e.ctx.Viewport.Height()*f

	moved := make([]valueobjects.NodeID, 0, len(nodes))
	for _, n := range nodes {
		pos, err := n.Position().Translate(dx, dy)
		if err != nil {
			continue
		}
		e.moveNode(n, pos)
		moved = append(moved, n.ID())
	}
	e.recordMove(moved, dx, dy)
}

func (e *Engine) setViewport(v valueobjects.Viewport, name events.ActionName) {
	e.ctx.Viewport = v
	e.renderer.SetViewport(v)
	e.log.Record(name, nil, map[string]interface{}{
		"left":   v.Left(),
		"top":    v.Top(),
		"width":  v.Width(),
		"height": v.Height(),
	})
}

// Pan shifts the viewport; dirX/dirY are -1, 0 or 1 per axis
func (e *Engine) Pan(dirX, dirY float64, t Trigger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pan(dirX, dirY, t)
}

// Zoom zooms around the last known pointer position and reports whether the
// zoom happened
func (e *Engine) Zoom(dir ZoomDirection, t Trigger) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zoom(dir, t)
}

// ZoomToFill fits the given nodes, or every visible node when ids is empty
func (e *Engine) ZoomToFill(ids ...valueobjects.NodeID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var nodes []*entities.Node
	if len(ids) == 0 {
		nodes = e.visibleNodes()
	}
	for _, id := range ids {
		n, err := e.ctx.Graph.GetNodeByID(id)
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
	}
	return e.zoomToFill(nodes)
}

// SetViewport replaces the viewport programmatically; it is logged as a pan
func (e *Engine) SetViewport(v valueobjects.Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setViewport(v, events.ActionPan)
}

func (e *Engine) visibleNodes() []*entities.Node {
	var out []*entities.Node
	for _, n := range e.ctx.Graph.ListNodes() {
		if !n.IsHidden() {
			out = append(out, n)
		}
	}
	return out
}
