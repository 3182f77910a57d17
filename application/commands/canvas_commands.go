// Package commands holds the programmatic mutations of a canvas. Editors,
// scripts and the replay CLI send them over the command bus; the handlers
// forward them to the interaction engine so they are logged and autosaved
// exactly like gestures.
package commands

import (
	"context"

	"brain2-canvas/application/interaction"
	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/pkg/utils"
)

// Canvas is the part of the interaction engine the handlers drive
type Canvas interface {
	CreateNode(spec interaction.NewNode) (*entities.Node, error)
	SetNodeProperty(id valueobjects.NodeID, name string, kind valueobjects.PropertyKind, value string) error
	RemoveNodeProperty(id valueobjects.NodeID, name string) error
	MoveNode(id valueobjects.NodeID, pos valueobjects.Position) error
	DeleteNode(id valueobjects.NodeID) error
	CreateLink(source, target valueobjects.NodeID) (*entities.Link, error)
	UpdateLink(id valueobjects.LinkID, update interaction.LinkUpdate) error
	DeleteLink(id valueobjects.LinkID) error
	DeleteSelection() (int, error)
	SetReadOnly(readOnly bool)
	Save(ctx context.Context) error
}

// CreateNodeCommand places a new node. NodeID is filled in by the handler.
type CreateNodeCommand struct {
	Kind       string                      `json:"kind" yaml:"kind" validate:"omitempty,oneof=empty full special"`
	TypeID     string                      `json:"type" yaml:"type" validate:"required,max=100"`
	X          float64                     `json:"x" yaml:"x"`
	Y          float64                     `json:"y" yaml:"y"`
	Properties []interaction.PropertyInput `json:"properties,omitempty" yaml:"properties,omitempty" validate:"dive"`

	NodeID string `json:"-" yaml:"-"`
}

// Validate checks the command fields
func (c *CreateNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// SetNodePropertyCommand sets one typed property
type SetNodePropertyCommand struct {
	NodeID string `json:"node_id" yaml:"node" validate:"required,uuid"`
	Name   string `json:"name" yaml:"name" validate:"required,max=200"`
	Kind   string `json:"kind" yaml:"kind" validate:"required"`
	Value  string `json:"value" yaml:"value"`
}

// Validate checks the command fields
func (c *SetNodePropertyCommand) Validate() error { return utils.ValidateStruct(c) }

// RemoveNodePropertyCommand removes one property
type RemoveNodePropertyCommand struct {
	NodeID string `json:"node_id" yaml:"node" validate:"required,uuid"`
	Name   string `json:"name" yaml:"name" validate:"required"`
}

// Validate checks the command fields
func (c *RemoveNodePropertyCommand) Validate() error { return utils.ValidateStruct(c) }

// MoveNodeCommand places a node at an absolute position
type MoveNodeCommand struct {
	NodeID string  `json:"node_id" yaml:"node" validate:"required,uuid"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
}

// Validate checks the command fields
func (c *MoveNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteNodeCommand deletes a node and its links
type DeleteNodeCommand struct {
	NodeID string `json:"node_id" yaml:"node" validate:"required,uuid"`
}

// Validate checks the command fields
func (c *DeleteNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteSelectionCommand deletes the current selection after confirmation.
// Removed is filled in by the handler.
type DeleteSelectionCommand struct {
	Removed int `json:"-" yaml:"-"`
}

// Validate always succeeds
func (c *DeleteSelectionCommand) Validate() error { return nil }

// CreateLinkCommand links two nodes. LinkID is filled in by the handler.
type CreateLinkCommand struct {
	SourceID string `json:"source_id" yaml:"source" validate:"required,uuid"`
	TargetID string `json:"target_id" yaml:"target" validate:"required,uuid,nefield=SourceID"`

	LinkID string `json:"-" yaml:"-"`
}

// Validate checks the command fields
func (c *CreateLinkCommand) Validate() error { return utils.ValidateStruct(c) }

// UpdateLinkCommand changes link attributes; nil fields are kept
type UpdateLinkCommand struct {
	LinkID        string   `json:"link_id" yaml:"link" validate:"required,uuid"`
	Label         *string  `json:"label,omitempty" yaml:"label,omitempty" validate:"omitempty,max=500"`
	Bidirectional *bool    `json:"bidirectional,omitempty" yaml:"bidirectional,omitempty"`
	AnchorPos     *float64 `json:"anchor_pos,omitempty" yaml:"anchorPos,omitempty" validate:"omitempty,gte=0,lte=1"`
	Bender        *float64 `json:"bender,omitempty" yaml:"bender,omitempty"`
}

// Validate checks the command fields
func (c *UpdateLinkCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteLinkCommand deletes one link
type DeleteLinkCommand struct {
	LinkID string `json:"link_id" yaml:"link" validate:"required,uuid"`
}

// Validate checks the command fields
func (c *DeleteLinkCommand) Validate() error { return utils.ValidateStruct(c) }

// SetReadOnlyCommand toggles whether the canvas accepts mutations
type SetReadOnlyCommand struct {
	ReadOnly bool `json:"read_only" yaml:"readOnly"`
}

// Validate always succeeds
func (c *SetReadOnlyCommand) Validate() error { return nil }

// SaveProjectCommand is an explicit user save
type SaveProjectCommand struct{}

// Validate always succeeds
func (c *SaveProjectCommand) Validate() error { return nil }
