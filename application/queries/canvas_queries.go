// Package queries holds the read models of a canvas. Handlers read through
// the engine's locked accessors so they are safe to call from the ops HTTP
// surface while gestures are being processed.
package queries

import (
	"brain2-canvas/application/actionlog"
	"brain2-canvas/application/interaction"
	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/domain/events"
	"brain2-canvas/pkg/utils"
)

// CanvasReader is the read side of the interaction engine
type CanvasReader interface {
	Snapshot() aggregates.GraphSnapshot
	Viewport() valueobjects.Viewport
	ActiveGesture() interaction.GestureKind
	SelectedNodeIDs() []valueobjects.NodeID
	SelectedLinkIDs() []valueobjects.LinkID
	SaveStatus() actionlog.SaveStatus
	Actions() []events.Action
}

// GetGraphDataQuery asks for the whole graph
type GetGraphDataQuery struct {
	IncludeHidden bool `json:"include_hidden"`
}

// Validate always succeeds
func (q GetGraphDataQuery) Validate() error { return nil }

// GetGraphDataResult is the graph together with summary statistics
type GetGraphDataResult struct {
	Graph aggregates.GraphSnapshot `json:"graph"`
	Stats GraphStats               `json:"stats"`
}

// GraphStats contains graph statistics
type GraphStats struct {
	NodeCount   int         `json:"node_count"`
	LinkCount   int         `json:"link_count"`
	HiddenCount int         `json:"hidden_count"`
	Density     float64     `json:"density"`
	Extent      *ExtentView `json:"extent,omitempty"`
}

// ExtentView is the bounding box of the returned node centres
type ExtentView struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// GetNodeQuery asks for a single node
type GetNodeQuery struct {
	NodeID string `json:"node_id" validate:"required,uuid"`
}

// Validate checks the query fields
func (q GetNodeQuery) Validate() error { return utils.ValidateStruct(q) }

// GetSelectionQuery asks for the current selection
type GetSelectionQuery struct{}

// Validate always succeeds
func (q GetSelectionQuery) Validate() error { return nil }

// SelectionResult lists the selected elements in graph order
type SelectionResult struct {
	NodeIDs []string `json:"node_ids"`
	LinkIDs []string `json:"link_ids"`
}

// GetViewportQuery asks for the viewport and the gesture in flight
type GetViewportQuery struct{}

// Validate always succeeds
func (q GetViewportQuery) Validate() error { return nil }

// ViewportResult is the visible area of the canvas
type ViewportResult struct {
	Viewport      aggregates.ViewportSnapshot `json:"viewport"`
	ActiveGesture string                      `json:"active_gesture"`
}

// GetSaveStatusQuery asks for the saved indicator
type GetSaveStatusQuery struct{}

// Validate always succeeds
func (q GetSaveStatusQuery) Validate() error { return nil }

// SaveStatusResult is the saved indicator plus the log size
type SaveStatusResult struct {
	Dirty     bool   `json:"dirty"`
	Saving    int    `json:"saving"`
	LastSaved string `json:"last_saved,omitempty"`
	LastError string `json:"last_error,omitempty"`
	Actions   int    `json:"actions"`
}

// ListActionsQuery asks for the most recent actions
type ListActionsQuery struct {
	Limit int               `json:"limit" validate:"gte=0,lte=1000"`
	Name  events.ActionName `json:"name,omitempty"`
}

// Validate checks the query fields
func (q ListActionsQuery) Validate() error { return utils.ValidateStruct(q) }

// ListActionsResult is a page of the action log, oldest first
type ListActionsResult struct {
	Actions []events.Action `json:"actions"`
	Total   int             `json:"total"`
}
