package interaction

import (
	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
)

// Selection is the set of selected nodes and links. It keeps the entity
// flags and its own membership sets in step; every member resolves in the
// graph.
type Selection struct {
	graph *aggregates.Graph
	nodes map[valueobjects.NodeID]struct{}
	links map[valueobjects.LinkID]struct{}
}

// NewSelection creates an empty selection over a graph
func NewSelection(graph *aggregates.Graph) *Selection {
	s := &Selection{
		graph: graph,
		nodes: make(map[valueobjects.NodeID]struct{}),
		links: make(map[valueobjects.LinkID]struct{}),
	}
	// adopt flags of a restored graph
	for _, n := range graph.ListNodes() {
		if n.IsSelected() {
			s.nodes[n.ID()] = struct{}{}
		}
	}
	for _, l := range graph.ListLinks() {
		if l.IsSelected() {
			s.links[l.ID()] = struct{}{}
		}
	}
	return s
}

// SetNode selects or deselects a node and reports whether it changed
func (s *Selection) SetNode(n *entities.Node, selected bool) bool {
	if selected {
		s.nodes[n.ID()] = struct{}{}
	} else {
		delete(s.nodes, n.ID())
	}
	return n.SetSelected(selected)
}

// SetLink selects or deselects a link and reports whether it changed
func (s *Selection) SetLink(l *entities.Link, selected bool) bool {
	if selected {
		s.links[l.ID()] = struct{}{}
	} else {
		delete(s.links, l.ID())
	}
	return l.SetSelected(selected)
}

// HasNode reports whether a node is selected
func (s *Selection) HasNode(id valueobjects.NodeID) bool {
	_, ok := s.nodes[id]
	return ok
}

// HasLink reports whether a link is selected
func (s *Selection) HasLink(id valueobjects.LinkID) bool {
	_, ok := s.links[id]
	return ok
}

// NodeCount returns the number of selected nodes
func (s *Selection) NodeCount() int {
	return len(s.nodes)
}

// LinkCount returns the number of selected links
func (s *Selection) LinkCount() int {
	return len(s.links)
}

// IsEmpty reports whether nothing is selected
func (s *Selection) IsEmpty() bool {
	return len(s.nodes) == 0 && len(s.links) == 0
}

// Nodes returns the selected nodes in graph order
func (s *Selection) Nodes() []*entities.Node {
	var out []*entities.Node
	for _, n := range s.graph.ListNodes() {
		if s.HasNode(n.ID()) {
			out = append(out, n)
		}
	}
	return out
}

// Links returns the selected links in graph order
func (s *Selection) Links() []*entities.Link {
	var out []*entities.Link
	for _, l := range s.graph.ListLinks() {
		if s.HasLink(l.ID()) {
			out = append(out, l)
		}
	}
	return out
}

// NodeIDs returns the selected node handles in graph order
func (s *Selection) NodeIDs() []valueobjects.NodeID {
	var out []valueobjects.NodeID
	for _, n := range s.Nodes() {
		out = append(out, n.ID())
	}
	return out
}

// Forget drops handles that no longer resolve in the graph
func (s *Selection) Forget(nodes []valueobjects.NodeID, links []valueobjects.LinkID) {
	for _, id := range nodes {
		delete(s.nodes, id)
	}
	for _, id := range links {
		delete(s.links, id)
	}
}

// selectionChange is one element whose highlight must be repainted
type selectionChange struct {
	node     *entities.Node
	link     *entities.Link
	selected bool
}

// Clear deselects everything and returns the elements that changed
func (s *Selection) Clear() []selectionChange {
	var changes []selectionChange
	for _, n := range s.Nodes() {
		if s.SetNode(n, false) {
			changes = append(changes, selectionChange{node: n})
		}
	}
	for _, l := range s.Links() {
		if s.SetLink(l, false) {
			changes = append(changes, selectionChange{link: l})
		}
	}
	return changes
}
