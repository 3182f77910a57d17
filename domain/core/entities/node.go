package entities

import (
	"strings"

	"brain2-canvas/domain/core/valueobjects"
	pkgerrors "brain2-canvas/pkg/errors"
)

// NodeMode is the derived display mode of a node
type NodeMode string

const (
	ModeEmpty   NodeMode = "empty"
	ModeFull    NodeMode = "full"
	ModeSpecial NodeMode = "special"
)

// Node is a placed palette item on the canvas.
// Mode is derived: special nodes stay special, otherwise a node is full iff it
// carries at least one property.
type Node struct {
	id         valueobjects.NodeID
	typeID     string
	position   valueobjects.Position
	special    bool
	properties *valueobjects.Properties
	selected   bool
	hidden     bool

	// incident link handles in attach order
	links []valueobjects.LinkID
}

// NodeVariant is the closed set {EmptyNode, FullNode, SpecialNode}
type NodeVariant interface {
	Node() *Node
	isNodeVariant()
}

// EmptyNode is a node without properties
type EmptyNode struct{ node *Node }

// FullNode is a node with at least one property
type FullNode struct{ node *Node }

// SpecialNode is a node whose rendering is owned by its palette type
type SpecialNode struct{ node *Node }

func (v EmptyNode) Node() *Node   { return v.node }
func (v FullNode) Node() *Node    { return v.node }
func (v SpecialNode) Node() *Node { return v.node }

func (EmptyNode) isNodeVariant()   {}
func (FullNode) isNodeVariant()    {}
func (SpecialNode) isNodeVariant() {}

// Properties returns the non-empty property set of a full node
func (v FullNode) Properties() *valueobjects.Properties {
	return v.node.properties.Clone()
}

// NewEmptyNode creates a node with no properties
func NewEmptyNode(typeID string, position valueobjects.Position) (*Node, error) {
	return newNode(typeID, position, false, valueobjects.NewProperties())
}

// NewFullNode creates a node with an initial, non-empty property set
func NewFullNode(typeID string, position valueobjects.Position, properties *valueobjects.Properties) (*Node, error) {
	if properties == nil || properties.Len() == 0 {
		return nil, pkgerrors.NewValidationError("full node requires at least one property")
	}
	for _, name := range properties.Names() {
		prop, _ := properties.Get(name)
		if !prop.Kind().IsValid() {
			return nil, pkgerrors.NewUnknownPropertyKindError(name, string(prop.Kind()))
		}
	}
	return newNode(typeID, position, false, properties.Clone())
}

// NewSpecialNode creates a special node
func NewSpecialNode(typeID string, position valueobjects.Position) (*Node, error) {
	return newNode(typeID, position, true, valueobjects.NewProperties())
}

func newNode(typeID string, position valueobjects.Position, special bool, props *valueobjects.Properties) (*Node, error) {
	typeID = strings.TrimSpace(typeID)
	if typeID == "" {
		return nil, pkgerrors.NewValidationError("node type cannot be empty")
	}
	return &Node{
		id:         valueobjects.NewNodeID(),
		typeID:     typeID,
		position:   position,
		special:    special,
		properties: props,
	}, nil
}

// ReconstructNode reconstructs a node from stored data. Properties are taken
// as-is so that kinds unknown to this build survive a round trip.
func ReconstructNode(
	id valueobjects.NodeID,
	typeID string,
	position valueobjects.Position,
	special bool,
	hidden bool,
	properties *valueobjects.Properties,
) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if properties == nil {
		properties = valueobjects.NewProperties()
	}
	node, err := newNode(typeID, position, special, properties.Clone())
	if err != nil {
		return nil, err
	}
	node.id = id
	node.hidden = hidden
	return node, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// TypeID returns the palette type reference
func (n *Node) TypeID() string {
	return n.typeID
}

// Position returns the node's position
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// MoveTo moves the node to a new position
func (n *Node) MoveTo(position valueobjects.Position) {
	n.position = position
}

// Mode derives the node mode from its flags and properties
func (n *Node) Mode() NodeMode {
	switch {
	case n.special:
		return ModeSpecial
	case n.properties.Len() > 0:
		return ModeFull
	default:
		return ModeEmpty
	}
}

// Variant returns the node wrapped in its variant type
func (n *Node) Variant() NodeVariant {
	switch n.Mode() {
	case ModeSpecial:
		return SpecialNode{node: n}
	case ModeFull:
		return FullNode{node: n}
	default:
		return EmptyNode{node: n}
	}
}

// IsSpecial reports whether the node is special
func (n *Node) IsSpecial() bool {
	return n.special
}

// Properties returns a copy of the node's properties
func (n *Node) Properties() *valueobjects.Properties {
	return n.properties.Clone()
}

// Property returns a single property
func (n *Node) Property(name string) (valueobjects.Property, bool) {
	return n.properties.Get(name)
}

// SetProperty stamps a value with its kind. Unknown kinds are rejected.
func (n *Node) SetProperty(name string, kind valueobjects.PropertyKind, value string) error {
	prop, err := valueobjects.NewProperty(name, kind, value)
	if err != nil {
		return err
	}
	n.properties.Set(name, prop)
	return nil
}

// RemoveProperty removes a property; the node becomes empty with the last one
func (n *Node) RemoveProperty(name string) bool {
	return n.properties.Remove(name)
}

// IsSelected reports the selection flag
func (n *Node) IsSelected() bool {
	return n.selected
}

// SetSelected sets the selection flag and reports whether it changed
func (n *Node) SetSelected(selected bool) bool {
	if n.selected == selected {
		return false
	}
	n.selected = selected
	return true
}

// IsHidden reports whether the node is hidden
func (n *Node) IsHidden() bool {
	return n.hidden
}

// SetHidden hides or shows the node
func (n *Node) SetHidden(hidden bool) {
	n.hidden = hidden
}

// LinkIDs returns the incident link handles
func (n *Node) LinkIDs() []valueobjects.LinkID {
	out := make([]valueobjects.LinkID, len(n.links))
	copy(out, n.links)
	return out
}

// Degree returns the number of incident links
func (n *Node) Degree() int {
	return len(n.links)
}

// HasLinks reports whether any link is still attached
func (n *Node) HasLinks() bool {
	return len(n.links) > 0
}

// AttachLink registers an incident link handle
func (n *Node) AttachLink(id valueobjects.LinkID) {
	for _, existing := range n.links {
		if existing.Equals(id) {
			return
		}
	}
	n.links = append(n.links, id)
}

// DetachLink removes an incident link handle
func (n *Node) DetachLink(id valueobjects.LinkID) bool {
	for i, existing := range n.links {
		if existing.Equals(id) {
			n.links = append(n.links[:i], n.links[i+1:]...)
			return true
		}
	}
	return false
}
