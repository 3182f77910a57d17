package entities

import (
	"math"

	"brain2-canvas/domain/core/valueobjects"
	pkgerrors "brain2-canvas/pkg/errors"
)

// DefaultAnchorPos places a link label halfway along the line
const DefaultAnchorPos = 0.5

// Link is a committed connection between two distinct nodes
type Link struct {
	id            valueobjects.LinkID
	source        valueobjects.NodeID
	target        valueobjects.NodeID
	label         string
	bidirectional bool
	anchorPos     float64
	bender        float64
	selected      bool
	hidden        bool
}

// NewLink creates a link between two distinct nodes
func NewLink(source, target valueobjects.NodeID) (*Link, error) {
	if err := validateEndpoints(source, target); err != nil {
		return nil, err
	}
	return &Link{
		id:        valueobjects.NewLinkID(),
		source:    source,
		target:    target,
		anchorPos: DefaultAnchorPos,
	}, nil
}

// ReconstructLink rebuilds a link from stored data
func ReconstructLink(
	id valueobjects.LinkID,
	source, target valueobjects.NodeID,
	label string,
	bidirectional bool,
	anchorPos, bender float64,
	hidden bool,
) (*Link, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("link id cannot be empty")
	}
	if err := validateEndpoints(source, target); err != nil {
		return nil, err
	}
	l := &Link{id: id, source: source, target: target, label: label, bidirectional: bidirectional, hidden: hidden}
	if err := l.SetAnchorPos(anchorPos); err != nil {
		return nil, err
	}
	if err := l.SetBender(bender); err != nil {
		return nil, err
	}
	return l, nil
}

func validateEndpoints(source, target valueobjects.NodeID) error {
	if source.IsZero() || target.IsZero() {
		return pkgerrors.NewInvalidLinkError("link endpoints must both be set")
	}
	if source.Equals(target) {
		return pkgerrors.NewInvalidLinkError("link cannot connect a node to itself")
	}
	return nil
}

// ID returns the link's unique identifier
func (l *Link) ID() valueobjects.LinkID { return l.id }

// Source returns the source node handle
func (l *Link) Source() valueobjects.NodeID { return l.source }

// Target returns the target node handle
func (l *Link) Target() valueobjects.NodeID { return l.target }

// Label returns the link label
func (l *Link) Label() string { return l.label }

// IsBidirectional reports whether the link is drawn in both directions
func (l *Link) IsBidirectional() bool { return l.bidirectional }

// AnchorPos returns the label anchor position along the line, in [0,1]
func (l *Link) AnchorPos() float64 { return l.anchorPos }

// Bender returns the perpendicular offset of the bend point
func (l *Link) Bender() float64 { return l.bender }

// Touches reports whether the node is one of the link's endpoints
func (l *Link) Touches(id valueobjects.NodeID) bool {
	return l.source.Equals(id) || l.target.Equals(id)
}

// Other returns the endpoint opposite to id
func (l *Link) Other(id valueobjects.NodeID) valueobjects.NodeID {
	if l.source.Equals(id) {
		return l.target
	}
	return l.source
}

// Connects reports whether the link joins a and b in either direction
func (l *Link) Connects(a, b valueobjects.NodeID) bool {
	return (l.source.Equals(a) && l.target.Equals(b)) ||
		(l.source.Equals(b) && l.target.Equals(a))
}

// SetLabel updates the label
func (l *Link) SetLabel(label string) {
	l.label = label
}

// SetBidirectional updates the direction flag
func (l *Link) SetBidirectional(bidirectional bool) {
	l.bidirectional = bidirectional
}

// SetAnchorPos moves the label anchor; the value must lie in [0,1]
func (l *Link) SetAnchorPos(pos float64) error {
	if math.IsNaN(pos) || pos < 0 || pos > 1 {
		return pkgerrors.NewValidationError("anchor position must be between 0 and 1")
	}
	l.anchorPos = pos
	return nil
}

// SetBender sets the perpendicular bend offset
func (l *Link) SetBender(bender float64) error {
	if math.IsNaN(bender) || math.IsInf(bender, 0) {
		return pkgerrors.NewValidationError("bender must be a finite number")
	}
	l.bender = bender
	return nil
}

// Reattach replaces an endpoint. The result must still be a valid link.
func (l *Link) Reattach(from, to valueobjects.NodeID) error {
	source, target := l.source, l.target
	if source.Equals(from) {
		source = to
	}
	if target.Equals(from) {
		target = to
	}
	if err := validateEndpoints(source, target); err != nil {
		return err
	}
	l.source, l.target = source, target
	return nil
}

// IsSelected reports the selection flag
func (l *Link) IsSelected() bool { return l.selected }

// SetSelected sets the selection flag and reports whether it changed
func (l *Link) SetSelected(selected bool) bool {
	if l.selected == selected {
		return false
	}
	l.selected = selected
	return true
}

// IsHidden reports whether the link is hidden
func (l *Link) IsHidden() bool { return l.hidden }

// SetHidden hides or shows the link
func (l *Link) SetHidden(hidden bool) { l.hidden = hidden }
