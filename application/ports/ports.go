package ports

import (
	"context"
	"time"

	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/domain/events"
)

// Handle is an opaque reference to a rendered element
type Handle interface{}

// ElementRef points at either a node or a link; exactly one is set
type ElementRef struct {
	Node valueobjects.NodeID
	Link valueobjects.LinkID
}

// NodeRef builds a reference to a node
func NodeRef(id valueobjects.NodeID) ElementRef {
	return ElementRef{Node: id}
}

// LinkRef builds a reference to a link
func LinkRef(id valueobjects.LinkID) ElementRef {
	return ElementRef{Link: id}
}

// IsNode reports whether the reference targets a node
func (r ElementRef) IsNode() bool {
	return !r.Node.IsZero()
}

// Renderer paints the canvas. The engine calls it after every committed
// geometry change and never reads rendering state back, except to ask whether
// an anchor handle already exists.
type Renderer interface {
	// AnchorFor returns the rendered anchor of an element, if present
	AnchorFor(ref ElementRef) (Handle, bool)

	// MoveTo moves a rendered anchor to graph coordinates
	MoveTo(h Handle, x, y float64)

	// RedrawLinkPath redraws one link from freshly computed geometry
	RedrawLinkPath(geo entities.LinkGeometry)

	// DrawSelectionRectangle draws or resizes the rubber band
	DrawSelectionRectangle(bounds valueobjects.Bounds)

	// RemoveSelectionRectangle removes the rubber band
	RemoveSelectionRectangle()

	// DrawNode renders a node; implementations switch on the variant
	DrawNode(node entities.NodeVariant)

	// DrawLink renders a newly committed link
	DrawLink(geo entities.LinkGeometry)

	// Remove removes a rendered element
	Remove(ref ElementRef)

	// SetSelected toggles the selection highlight of an element
	SetSelected(ref ElementRef, selected bool)

	// DrawPendingLink draws the line of a link being drawn
	DrawPendingLink(from, to valueobjects.Position)

	// RemovePendingLink removes the pending line
	RemovePendingLink()

	// SetViewport maps a new visible rectangle onto the screen
	SetViewport(viewport valueobjects.Viewport)
}

// ActionSink receives committed actions
type ActionSink interface {
	SaveAction(ctx context.Context, action events.Action) error
}

// Persistence stores actions and whole-project snapshots. Calls are best
// effort; failures never reach the interaction engine.
type Persistence interface {
	ActionSink

	// SaveProject stores a snapshot. quiet suppresses user-facing feedback
	// for autosaves.
	SaveProject(ctx context.Context, project aggregates.GraphSnapshot, quiet bool) error
}

// ProjectLoader reads a previously saved snapshot
type ProjectLoader interface {
	LoadProject(ctx context.Context, projectID string) (aggregates.GraphSnapshot, error)
}

// TypeDescriptor describes a palette item type
type TypeDescriptor struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Radius  float64 `json:"radius" yaml:"radius"`
	Special bool    `json:"special,omitempty" yaml:"special,omitempty"`
}

// Palette resolves node types. A missing type is a normal outcome.
type Palette interface {
	GetItemByID(typeID string) (TypeDescriptor, bool)
}

// Question names what the user is asked to confirm
type Question string

const (
	QuestionMerge       Question = "merge"
	QuestionMergeDelete Question = "merge_delete"
	QuestionDelete      Question = "delete"
)

// Confirmer is a synchronous yes/no prompt
type Confirmer interface {
	Confirm(question Question, message string) bool
}

// NotificationLevel is the severity of a user-visible message
type NotificationLevel string

const (
	NotifyInfo    NotificationLevel = "info"
	NotifyWarning NotificationLevel = "warning"
	NotifyError   NotificationLevel = "error"
)

// Notifier shows messages to the user
type Notifier interface {
	Notify(level NotificationLevel, message string)
}

// Clock provides the current time
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time { return time.Now() }
