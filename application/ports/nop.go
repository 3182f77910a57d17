package ports

import (
	"context"

	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/domain/events"
)

// NopRenderer renders nothing and reports no anchors. Used for headless
// replay and programmatic mutation.
type NopRenderer struct{}

func (NopRenderer) AnchorFor(ElementRef) (Handle, bool)                          { return nil, false }
func (NopRenderer) MoveTo(Handle, float64, float64)                              {}
func (NopRenderer) RedrawLinkPath(entities.LinkGeometry)                         {}
func (NopRenderer) DrawSelectionRectangle(valueobjects.Bounds)                   {}
func (NopRenderer) RemoveSelectionRectangle()                                    {}
func (NopRenderer) DrawNode(entities.NodeVariant)                                {}
func (NopRenderer) DrawLink(entities.LinkGeometry)                               {}
func (NopRenderer) Remove(ElementRef)                                            {}
func (NopRenderer) SetSelected(ElementRef, bool)                                 {}
func (NopRenderer) DrawPendingLink(valueobjects.Position, valueobjects.Position) {}
func (NopRenderer) RemovePendingLink()                                           {}
func (NopRenderer) SetViewport(valueobjects.Viewport)                            {}

// NopPersistence discards everything
type NopPersistence struct{}

func (NopPersistence) SaveAction(context.Context, events.Action) error { return nil }
func (NopPersistence) SaveProject(context.Context, aggregates.GraphSnapshot, bool) error {
	return nil
}

// StaticConfirmer answers every question the same way
type StaticConfirmer bool

// Confirm returns the fixed answer
func (c StaticConfirmer) Confirm(Question, string) bool { return bool(c) }

// NopNotifier drops notifications
type NopNotifier struct{}

func (NopNotifier) Notify(NotificationLevel, string) {}

// MapPalette is an in-memory palette keyed by type id
type MapPalette map[string]TypeDescriptor

// GetItemByID looks up a type descriptor
func (p MapPalette) GetItemByID(typeID string) (TypeDescriptor, bool) {
	d, ok := p[typeID]
	return d, ok
}
