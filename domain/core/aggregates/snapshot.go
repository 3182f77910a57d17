package aggregates

import (
	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	pkgerrors "brain2-canvas/pkg/errors"
)

// GraphSnapshot is the logical schema of a canvas exposed to persistence.
// Revision counts the changes the snapshot includes; stores use it to refuse
// a snapshot older than the one they hold.
type GraphSnapshot struct {
	ID       string            `json:"id" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	ReadOnly bool              `json:"readOnly,omitempty" yaml:"read_only,omitempty"`
	Revision uint64            `json:"revision,omitempty" yaml:"revision,omitempty"`
	Nodes    []NodeSnapshot    `json:"nodes" yaml:"nodes"`
	Links    []LinkSnapshot    `json:"links" yaml:"links"`
	Viewport *ViewportSnapshot `json:"viewport,omitempty" yaml:"viewport,omitempty"`
}

// NodeSnapshot is the stored shape of a node
type NodeSnapshot struct {
	ID         string             `json:"uid" yaml:"uid"`
	TypeID     string             `json:"type" yaml:"type"`
	X          float64            `json:"x" yaml:"x"`
	Y          float64            `json:"y" yaml:"y"`
	Mode       string             `json:"mode" yaml:"mode"`
	Hidden     bool               `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Properties []PropertySnapshot `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// PropertySnapshot is the stored shape of one node property
type PropertySnapshot struct {
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Value string `json:"value" yaml:"value"`
}

// LinkSnapshot is the stored shape of a link
type LinkSnapshot struct {
	ID            string  `json:"uid" yaml:"uid"`
	Source        string  `json:"source" yaml:"source"`
	Target        string  `json:"target" yaml:"target"`
	Label         string  `json:"label,omitempty" yaml:"label,omitempty"`
	Bidirectional bool    `json:"bidirectional,omitempty" yaml:"bidirectional,omitempty"`
	AnchorPos     float64 `json:"anchorPos" yaml:"anchor_pos"`
	Bender        float64 `json:"bender,omitempty" yaml:"bender,omitempty"`
	Hidden        bool    `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// ViewportSnapshot is the stored shape of the viewport
type ViewportSnapshot struct {
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// SnapshotNode converts a node into its stored shape
func SnapshotNode(n *entities.Node) NodeSnapshot {
	props := n.Properties()
	out := NodeSnapshot{
		ID:     n.ID().String(),
		TypeID: n.TypeID(),
		X:      n.Position().X(),
		Y:      n.Position().Y(),
		Mode:   string(n.Mode()),
		Hidden: n.IsHidden(),
	}
	for _, name := range props.Names() {
		prop, _ := props.Get(name)
		out.Properties = append(out.Properties, PropertySnapshot{
			Name:  name,
			Kind:  string(prop.Kind()),
			Value: prop.Value(),
		})
	}
	return out
}

// SnapshotLink converts a link into its stored shape
func SnapshotLink(l *entities.Link) LinkSnapshot {
	return LinkSnapshot{
		ID:            l.ID().String(),
		Source:        l.Source().String(),
		Target:        l.Target().String(),
		Label:         l.Label(),
		Bidirectional: l.IsBidirectional(),
		AnchorPos:     l.AnchorPos(),
		Bender:        l.Bender(),
		Hidden:        l.IsHidden(),
	}
}

// SnapshotViewport converts a viewport into its stored shape
func SnapshotViewport(v valueobjects.Viewport) *ViewportSnapshot {
	return &ViewportSnapshot{Left: v.Left(), Top: v.Top(), Width: v.Width(), Height: v.Height()}
}

// Snapshot returns the nodes and links of the graph in insertion order
func (g *Graph) Snapshot() GraphSnapshot {
	snap := GraphSnapshot{
		ID:       g.id.String(),
		Name:     g.name,
		ReadOnly: g.readOnly,
		Nodes:    make([]NodeSnapshot, 0, len(g.nodeOrder)),
		Links:    make([]LinkSnapshot, 0, len(g.linkOrder)),
	}
	for _, node := range g.ListNodes() {
		snap.Nodes = append(snap.Nodes, SnapshotNode(node))
	}
	for _, link := range g.ListLinks() {
		snap.Links = append(snap.Links, SnapshotLink(link))
	}
	return snap
}

// RestoreGraph rebuilds a graph from its stored shape
func RestoreGraph(snap GraphSnapshot) (*Graph, error) {
	g := NewGraph(snap.Name)
	if snap.ID != "" {
		g.id = GraphID(snap.ID)
	}

	for _, ns := range snap.Nodes {
		id, err := valueobjects.NewNodeIDFromString(ns.ID)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		pos, err := valueobjects.NewPosition(ns.X, ns.Y)
		if err != nil {
			return nil, err
		}
		props := valueobjects.NewProperties()
		for _, ps := range ns.Properties {
			props.Set(ps.Name, valueobjects.ReconstructProperty(ps.Kind, ps.Value))
		}
		special := ns.Mode == string(entities.ModeSpecial)
		node, err := entities.ReconstructNode(id, ns.TypeID, pos, special, ns.Hidden, props)
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(node); err != nil {
			return nil, err
		}
	}

	for _, ls := range snap.Links {
		id, err := valueobjects.NewLinkIDFromString(ls.ID)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		src, err := valueobjects.NewNodeIDFromString(ls.Source)
		if err != nil {
			return nil, pkgerrors.NewInvalidLinkError("link " + ls.ID + ": " + err.Error())
		}
		tgt, err := valueobjects.NewNodeIDFromString(ls.Target)
		if err != nil {
			return nil, pkgerrors.NewInvalidLinkError("link " + ls.ID + ": " + err.Error())
		}
		link, err := entities.ReconstructLink(id, src, tgt, ls.Label, ls.Bidirectional, ls.AnchorPos, ls.Bender, ls.Hidden)
		if err != nil {
			return nil, err
		}
		if err := g.InsertLink(link); err != nil {
			return nil, err
		}
	}

	g.readOnly = snap.ReadOnly
	return g, nil
}
