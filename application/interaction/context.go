package interaction

import (
	"brain2-canvas/domain/config"
	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	pkgerrors "brain2-canvas/pkg/errors"
)

// ScreenPoint is a pointer position in screen pixels, origin top-left
type ScreenPoint struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// ScreenSize is the size of the drawing surface in pixels
type ScreenSize struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Modifiers is the set of modifier keys held during an event
type Modifiers struct {
	Shift bool `yaml:"shift" json:"shift"`
	Ctrl  bool `yaml:"ctrl" json:"ctrl"`
	Alt   bool `yaml:"alt" json:"alt"`
	Meta  bool `yaml:"meta" json:"meta"`
}

// Has reports whether the named modifier is held
func (m Modifiers) Has(mod config.Modifier) bool {
	switch mod {
	case config.ModifierShift:
		return m.Shift
	case config.ModifierCtrl:
		return m.Ctrl
	case config.ModifierAlt:
		return m.Alt
	case config.ModifierMeta:
		return m.Meta
	default:
		return false
	}
}

// Any reports whether any modifier is held
func (m Modifiers) Any() bool {
	return m.Shift || m.Ctrl || m.Alt || m.Meta
}

// PointerEvent is a pointer down, move or up
type PointerEvent struct {
	Position  ScreenPoint
	Modifiers Modifiers
}

// WheelEvent is a scroll wheel or trackpad step
type WheelEvent struct {
	Position  ScreenPoint
	DeltaX    float64
	DeltaY    float64
	Modifiers Modifiers
}

// KeyEvent is a key press
type KeyEvent struct {
	Key       string
	Modifiers Modifiers
}

// InteractionContext is the per-canvas interaction state: the graph, the
// viewport mapping, the selection and whichever gesture is in flight.
// Exactly one gesture state is non-nil while active is not GestureNone.
type InteractionContext struct {
	Graph     *aggregates.Graph
	Viewport  valueobjects.Viewport
	Screen    ScreenSize
	Selection *Selection

	// last observed pointer position; nil until the first pointer event
	pointer *ScreenPoint

	active GestureKind
	drag   *DragState
	link   *PendingLink
	rect   *rectState
	pan    *panState
}

// NewInteractionContext creates the state for one canvas
func NewInteractionContext(graph *aggregates.Graph, viewport valueobjects.Viewport, screen ScreenSize) (*InteractionContext, error) {
	if graph == nil {
		return nil, pkgerrors.NewValidationError("graph is required")
	}
	if screen.Width <= 0 || screen.Height <= 0 {
		return nil, pkgerrors.NewValidationError("screen size must be positive")
	}
	return &InteractionContext{
		Graph:     graph,
		Viewport:  viewport,
		Screen:    screen,
		Selection: NewSelection(graph),
	}, nil
}

// ActiveGesture returns the gesture in flight
func (c *InteractionContext) ActiveGesture() GestureKind {
	return c.active
}

// Pointer returns the last known pointer position
func (c *InteractionContext) Pointer() (ScreenPoint, bool) {
	if c.pointer == nil {
		return ScreenPoint{}, false
	}
	return *c.pointer, true
}

func (c *InteractionContext) observePointer(p ScreenPoint) {
	c.pointer = &p
}

// ToGraph maps a screen point into graph coordinates
func (c *InteractionContext) ToGraph(p ScreenPoint) (valueobjects.Position, error) {
	v := c.Viewport
	return valueobjects.NewPosition(
		v.Left()+p.X/c.Screen.Width*v.Width(),
		v.Top()+p.Y/c.Screen.Height*v.Height(),
	)
}

// ToScreen maps a graph position onto the screen
func (c *InteractionContext) ToScreen(pos valueobjects.Position) ScreenPoint {
	v := c.Viewport
	return ScreenPoint{
		X: (pos.X() - v.Left()) / v.Width() * c.Screen.Width,
		Y: (pos.Y() - v.Top()) / v.Height() * c.Screen.Height,
	}
}

// ScreenDeltaToGraph converts a pixel delta into graph units
func (c *InteractionContext) ScreenDeltaToGraph(dx, dy float64) (float64, float64) {
	return dx / c.Screen.Width * c.Viewport.Width(), dy / c.Screen.Height * c.Viewport.Height()
}

// ScreenFraction returns the pointer offset as a fraction of the screen
func (c *InteractionContext) ScreenFraction(p ScreenPoint) (float64, float64) {
	return p.X / c.Screen.Width, p.Y / c.Screen.Height
}

// Snapshot returns the graph together with the current viewport
func (c *InteractionContext) Snapshot() aggregates.GraphSnapshot {
	snap := c.Graph.Snapshot()
	snap.Viewport = aggregates.SnapshotViewport(c.Viewport)
	return snap
}

// topmostNodeAt returns the last drawn visible node whose hit circle
// contains pos
func (c *InteractionContext) topmostNodeAt(pos valueobjects.Position, radius func(*entities.Node) float64) *entities.Node {
	nodes := c.Graph.ListNodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.IsHidden() {
			continue
		}
		if n.Position().DistanceTo(pos) <= radius(n) {
			return n
		}
	}
	return nil
}

// travel is the larger axis distance between two pointer positions
func travel(a, b ScreenPoint) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
