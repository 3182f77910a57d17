// Package interaction turns pointer and keyboard gestures into graph
// mutations, viewport changes and selection updates.
package interaction

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"brain2-canvas/application/actionlog"
	"brain2-canvas/application/ports"
	"brain2-canvas/domain/config"
	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/domain/events"
	pkgerrors "brain2-canvas/pkg/errors"
)

// GestureKind identifies one of the mutually exclusive gesture machines
type GestureKind int

const (
	GestureNone GestureKind = iota
	GestureDrag
	GestureLink
	GestureRectSelect
	GesturePan
)

// String returns the gesture name
func (k GestureKind) String() string {
	switch k {
	case GestureDrag:
		return "drag"
	case GestureLink:
		return "link"
	case GestureRectSelect:
		return "rect_select"
	case GesturePan:
		return "pan"
	default:
		return "none"
	}
}

// mutates reports whether the gesture writes to the graph
func (k GestureKind) mutates() bool {
	return k == GestureDrag || k == GestureLink
}

// GestureHandler drives one gesture from pointer-down to pointer-up.
// target is the node under the pointer at pointer-down, nil on background.
type GestureHandler interface {
	Begin(e *Engine, ev PointerEvent, target *entities.Node) error
	Move(e *Engine, ev PointerEvent)
	End(e *Engine, ev PointerEvent)
}

// Metrics receives gesture outcomes
type Metrics interface {
	GestureStarted(kind string)
	GestureRejected(kind, reason string)
	MergeResolved(outcome string)
}

type nopMetrics struct{}

func (nopMetrics) GestureStarted(string)          {}
func (nopMetrics) GestureRejected(string, string) {}
func (nopMetrics) MergeResolved(string)           {}

// Dependencies are the collaborators of an Engine. Nil members fall back to
// no-op implementations.
type Dependencies struct {
	Renderer    ports.Renderer
	Persistence ports.Persistence
	Palette     ports.Palette
	Confirmer   ports.Confirmer
	Notifier    ports.Notifier
	Config      *config.Holder
	Logger      *zap.Logger
	Metrics     Metrics
	LogMetrics  actionlog.Metrics
	LogOptions  []actionlog.Option
}

// Engine is the interaction engine of one canvas. Every exported method is
// one turn of the event loop; the engine serializes them, so ops surfaces may
// read state from other goroutines.
type Engine struct {
	mu sync.Mutex

	ctx       *InteractionContext
	renderer  ports.Renderer
	palette   ports.Palette
	confirmer ports.Confirmer
	notifier  ports.Notifier
	config    *config.Holder
	log       *actionlog.Log
	logger    *zap.Logger
	metrics   Metrics

	handlers map[GestureKind]GestureHandler
}

// NewEngine creates an engine over a graph
func NewEngine(graph *aggregates.Graph, viewport valueobjects.Viewport, screen ScreenSize, deps Dependencies) (*Engine, error) {
	ictx, err := NewInteractionContext(graph, viewport, screen)
	if err != nil {
		return nil, err
	}

	if deps.Renderer == nil {
		deps.Renderer = ports.NopRenderer{}
	}
	if deps.Palette == nil {
		deps.Palette = ports.MapPalette{}
	}
	if deps.Confirmer == nil {
		deps.Confirmer = ports.StaticConfirmer(false)
	}
	if deps.Notifier == nil {
		deps.Notifier = ports.NopNotifier{}
	}
	if deps.Config == nil {
		deps.Config = config.NewHolder(nil)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}

	e := &Engine{
		ctx:       ictx,
		renderer:  deps.Renderer,
		palette:   deps.Palette,
		confirmer: deps.Confirmer,
		notifier:  deps.Notifier,
		config:    deps.Config,
		logger:    deps.Logger.Named("interaction"),
		metrics:   deps.Metrics,
		handlers: map[GestureKind]GestureHandler{
			GestureDrag:       dragHandler{},
			GestureLink:       linkHandler{},
			GestureRectSelect: rectSelectHandler{},
			GesturePan:        panHandler{},
		},
	}

	logOpts := deps.LogOptions
	if deps.LogMetrics != nil {
		logOpts = append(logOpts, actionlog.WithMetrics(deps.LogMetrics))
	}
	e.log = actionlog.New(deps.Persistence, ictx.Snapshot, deps.Config, deps.Logger.Named("actionlog"), logOpts...)
	return e, nil
}

// cfg returns the live configuration
func (e *Engine) cfg() *config.InteractionConfig {
	return e.config.Load()
}

// radiusFor returns the hit radius of a node: the palette radius of its
// type, or the configured default.
func (e *Engine) radiusFor(n *entities.Node) float64 {
	if desc, ok := e.palette.GetItemByID(n.TypeID()); ok && desc.Radius > 0 {
		return desc.Radius
	}
	return e.cfg().NodeRadius
}

// classify picks the gesture for a pointer-down
func (e *Engine) classify(target *entities.Node, mods Modifiers) GestureKind {
	cfg := e.cfg()
	if target != nil {
		if mods.Has(cfg.LinkModifier) {
			return GestureLink
		}
		return GestureDrag
	}
	if mods.Has(cfg.PanModifier) {
		return GesturePan
	}
	return GestureRectSelect
}

// PointerDown starts a gesture. Only a read-only violation or a gesture
// already in flight is returned; both leave the engine idle or unchanged.
func (e *Engine) PointerDown(ev PointerEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ctx.observePointer(ev.Position)
	if e.ctx.active != GestureNone {
		e.metrics.GestureRejected(e.ctx.active.String(), "gesture_active")
		return pkgerrors.NewGestureActiveError(e.ctx.active.String())
	}

	pos, err := e.ctx.ToGraph(ev.Position)
	if err != nil {
		return err
	}
	target := e.ctx.topmostNodeAt(pos, e.radiusFor)
	kind := e.classify(target, ev.Modifiers)

	if kind.mutates() && e.ctx.Graph.IsReadOnly() {
		err := pkgerrors.NewReadOnlyViolation(kind.String())
		e.notifier.Notify(ports.NotifyWarning, err.Message)
		e.metrics.GestureRejected(kind.String(), "read_only")
		e.logger.Debug("gesture refused on read-only graph", zap.String("gesture", kind.String()))
		return err
	}

	handler := e.handlers[kind]
	if err := handler.Begin(e, ev, target); err != nil {
		e.metrics.GestureRejected(kind.String(), "begin_failed")
		return err
	}
	e.ctx.active = kind
	e.metrics.GestureStarted(kind.String())
	e.logger.Debug("gesture started", zap.String("gesture", kind.String()))
	return nil
}

// PointerMove advances the active gesture, if any
func (e *Engine) PointerMove(ev PointerEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ctx.observePointer(ev.Position)
	if e.ctx.active == GestureNone {
		return
	}
	e.handlers[e.ctx.active].Move(e, ev)
}

// PointerUp ends the active gesture. It is the only cancellation point.
func (e *Engine) PointerUp(ev PointerEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ctx.observePointer(ev.Position)
	kind := e.ctx.active
	if kind == GestureNone {
		return
	}
	e.handlers[kind].End(e, ev)
	e.ctx.active = GestureNone
	e.logger.Debug("gesture ended", zap.String("gesture", kind.String()))
}

// Wheel pans with the pan modifier held and zooms otherwise
func (e *Engine) Wheel(ev WheelEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ctx.observePointer(ev.Position)
	if e.ctx.active != GestureNone {
		return
	}
	cfg := e.cfg()
	if ev.Modifiers.Has(cfg.PanModifier) {
		e.pan(sign(ev.DeltaX), sign(ev.DeltaY), TriggerContinuous)
		return
	}
	switch {
	case ev.DeltaY < 0:
		e.zoom(ZoomIn, TriggerContinuous)
	case ev.DeltaY > 0:
		e.zoom(ZoomOut, TriggerContinuous)
	}
}

// SetScreenSize updates the drawing surface size
func (e *Engine) SetScreenSize(size ScreenSize) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if size.Width <= 0 || size.Height <= 0 {
		return pkgerrors.NewValidationError("screen size must be positive")
	}
	e.ctx.Screen = size
	return nil
}

// SetConfig swaps the live configuration
func (e *Engine) SetConfig(cfg *config.InteractionConfig) {
	e.config.Store(cfg)
}

// Save is the user-triggered save
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Save(ctx)
}

// Flush closes any open pan/zoom run in the action log
func (e *Engine) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log.Flush()
}

// Log exposes the action log
func (e *Engine) Log() *actionlog.Log {
	return e.log
}

// Context exposes the interaction context. Callers outside the event loop
// must go through the snapshot accessors instead.
func (e *Engine) Context() *InteractionContext {
	return e.ctx
}

// Snapshot returns the graph and viewport as persisted
func (e *Engine) Snapshot() aggregates.GraphSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx.Snapshot()
}

// Viewport returns the current viewport
func (e *Engine) Viewport() valueobjects.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx.Viewport
}

// ActiveGesture returns the gesture in flight
func (e *Engine) ActiveGesture() GestureKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx.active
}

// SelectedNodeIDs returns the selected nodes in graph order
func (e *Engine) SelectedNodeIDs() []valueobjects.NodeID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx.Selection.NodeIDs()
}

// SelectedLinkIDs returns the selected links in graph order
func (e *Engine) SelectedLinkIDs() []valueobjects.LinkID {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []valueobjects.LinkID
	for _, l := range e.ctx.Selection.Links() {
		out = append(out, l.ID())
	}
	return out
}

// SaveStatus returns the saved indicator
func (e *Engine) SaveStatus() actionlog.SaveStatus {
	return e.log.Status()
}

// Actions returns a copy of the action log, open pan/zoom run included
func (e *Engine) Actions() []events.Action {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Actions()
}

// moveNode places one node and repaints it together with its incident links
// before returning, so no frame shows a node detached from its links.
func (e *Engine) moveNode(n *entities.Node, pos valueobjects.Position) {
	n.MoveTo(pos)
	if h, ok := e.renderer.AnchorFor(ports.NodeRef(n.ID())); ok {
		e.renderer.MoveTo(h, pos.X(), pos.Y())
	}
	for _, link := range e.ctx.Graph.IncidentLinks(n.ID()) {
		e.redrawLink(link)
	}
}

func (e *Engine) redrawLink(link *entities.Link) {
	geo, err := e.ctx.Graph.LinkGeometry(link)
	if err != nil {
		e.logger.Warn("cannot compute link geometry", zap.String("link", link.ID().String()), zap.Error(err))
		return
	}
	e.renderer.RedrawLinkPath(geo)
}

func (e *Engine) paintSelection(changes []selectionChange) {
	for _, c := range changes {
		if c.node != nil {
			e.renderer.SetSelected(ports.NodeRef(c.node.ID()), c.node.IsSelected())
		} else if c.link != nil {
			e.renderer.SetSelected(ports.LinkRef(c.link.ID()), c.link.IsSelected())
		}
	}
}

func (e *Engine) setNodeSelected(n *entities.Node, selected bool) {
	if e.ctx.Selection.SetNode(n, selected) {
		e.renderer.SetSelected(ports.NodeRef(n.ID()), selected)
	}
}

func (e *Engine) setLinkSelected(l *entities.Link, selected bool) {
	if e.ctx.Selection.SetLink(l, selected) {
		e.renderer.SetSelected(ports.LinkRef(l.ID()), selected)
	}
}

// requireWritable notifies the user and returns a read-only violation when
// the graph refuses mutations
func (e *Engine) requireWritable(operation string) error {
	if !e.ctx.Graph.IsReadOnly() {
		return nil
	}
	err := pkgerrors.NewReadOnlyViolation(operation)
	e.notifier.Notify(ports.NotifyWarning, err.Message)
	return err
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
