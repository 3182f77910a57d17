package aggregates

import (
	"fmt"

	"github.com/google/uuid"

	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	pkgerrors "brain2-canvas/pkg/errors"
)

// GraphID represents a unique graph identifier
type GraphID string

// NewGraphID creates a new random GraphID
func NewGraphID() GraphID {
	return GraphID(uuid.New().String())
}

// String returns the string representation
func (id GraphID) String() string {
	return string(id)
}

// Graph is the arena owning every node and link on a canvas.
// Links store endpoint handles and nodes store incident link handles; there
// are no pointers between entities. The graph never records actions: callers
// pair each structural change with one logged action.
type Graph struct {
	id       GraphID
	name     string
	readOnly bool

	nodes     map[valueobjects.NodeID]*entities.Node
	nodeOrder []valueobjects.NodeID
	links     map[valueobjects.LinkID]*entities.Link
	linkOrder []valueobjects.LinkID
}

// NewGraph creates an empty, writable graph
func NewGraph(name string) *Graph {
	return &Graph{
		id:    NewGraphID(),
		name:  name,
		nodes: make(map[valueobjects.NodeID]*entities.Node),
		links: make(map[valueobjects.LinkID]*entities.Link),
	}
}

// ID returns the graph's unique identifier
func (g *Graph) ID() GraphID {
	return g.id
}

// Name returns the graph's name
func (g *Graph) Name() string {
	return g.name
}

// IsReadOnly reports whether mutating gestures are refused
func (g *Graph) IsReadOnly() bool {
	return g.readOnly
}

// SetReadOnly toggles the read-only flag
func (g *Graph) SetReadOnly(readOnly bool) {
	g.readOnly = readOnly
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// LinkCount returns the number of links
func (g *Graph) LinkCount() int {
	return len(g.links)
}

// AddNode adds a node to the graph
func (g *Graph) AddNode(node *entities.Node) error {
	if node == nil {
		return pkgerrors.NewValidationError("node cannot be nil")
	}
	if _, exists := g.nodes[node.ID()]; exists {
		return pkgerrors.NewConflictError(fmt.Sprintf("node %s already exists", node.ID()))
	}
	g.nodes[node.ID()] = node
	g.nodeOrder = append(g.nodeOrder, node.ID())
	return nil
}

// DeleteNode removes a node. A node that still has links is refused unless
// cascade is set, in which case its links are detached and deleted first and
// returned to the caller.
func (g *Graph) DeleteNode(id valueobjects.NodeID, cascade bool) ([]*entities.Link, error) {
	node, err := g.GetNodeByID(id)
	if err != nil {
		return nil, err
	}
	if node.HasLinks() && !cascade {
		return nil, pkgerrors.NewConflictError(
			fmt.Sprintf("node %s still has %d links", id, node.Degree()))
	}

	var removed []*entities.Link
	for _, linkID := range node.LinkIDs() {
		link, err := g.DeleteLink(linkID)
		if err != nil {
			return removed, err
		}
		removed = append(removed, link)
	}

	delete(g.nodes, id)
	g.nodeOrder = removeNodeID(g.nodeOrder, id)
	return removed, nil
}

// AddLink creates and registers a link between two live, distinct nodes
func (g *Graph) AddLink(source, target valueobjects.NodeID) (*entities.Link, error) {
	link, err := entities.NewLink(source, target)
	if err != nil {
		return nil, err
	}
	if err := g.InsertLink(link); err != nil {
		return nil, err
	}
	return link, nil
}

// InsertLink registers an already constructed link, e.g. during import
func (g *Graph) InsertLink(link *entities.Link) error {
	if link == nil {
		return pkgerrors.NewValidationError("link cannot be nil")
	}
	if link.Source().Equals(link.Target()) {
		return pkgerrors.NewInvalidLinkError("link cannot connect a node to itself")
	}
	src, ok := g.nodes[link.Source()]
	if !ok {
		return pkgerrors.NewInvalidLinkError("source node " + link.Source().String() + " does not exist")
	}
	tgt, ok := g.nodes[link.Target()]
	if !ok {
		return pkgerrors.NewInvalidLinkError("target node " + link.Target().String() + " does not exist")
	}
	if _, exists := g.links[link.ID()]; exists {
		return pkgerrors.NewConflictError(fmt.Sprintf("link %s already exists", link.ID()))
	}

	g.links[link.ID()] = link
	g.linkOrder = append(g.linkOrder, link.ID())
	src.AttachLink(link.ID())
	tgt.AttachLink(link.ID())
	return nil
}

// DeleteLink removes a link and detaches it from both endpoints
func (g *Graph) DeleteLink(id valueobjects.LinkID) (*entities.Link, error) {
	link, ok := g.links[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("link " + id.String())
	}
	if src, ok := g.nodes[link.Source()]; ok {
		src.DetachLink(id)
	}
	if tgt, ok := g.nodes[link.Target()]; ok {
		tgt.DetachLink(id)
	}
	delete(g.links, id)
	g.linkOrder = removeLinkID(g.linkOrder, id)
	return link, nil
}

// ListNodes returns all nodes in insertion order
func (g *Graph) ListNodes() []*entities.Node {
	out := make([]*entities.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// ListLinks returns all links in insertion order
func (g *Graph) ListLinks() []*entities.Link {
	out := make([]*entities.Link, 0, len(g.linkOrder))
	for _, id := range g.linkOrder {
		out = append(out, g.links[id])
	}
	return out
}

// GetNodeByID returns a node by its handle
func (g *Graph) GetNodeByID(id valueobjects.NodeID) (*entities.Node, error) {
	node, ok := g.nodes[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node " + id.String())
	}
	return node, nil
}

// GetLink returns a link by its handle
func (g *Graph) GetLink(id valueobjects.LinkID) (*entities.Link, error) {
	link, ok := g.links[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("link " + id.String())
	}
	return link, nil
}

// IncidentLinks returns the links touching a node, in O(degree)
func (g *Graph) IncidentLinks(id valueobjects.NodeID) []*entities.Link {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}
	ids := node.LinkIDs()
	out := make([]*entities.Link, 0, len(ids))
	for _, linkID := range ids {
		if link, ok := g.links[linkID]; ok {
			out = append(out, link)
		}
	}
	return out
}

// MoveNode places a node at a new position
func (g *Graph) MoveNode(id valueobjects.NodeID, pos valueobjects.Position) error {
	node, err := g.GetNodeByID(id)
	if err != nil {
		return err
	}
	node.MoveTo(pos)
	return nil
}

// SetNodeProperty is the single typed property setter. Unknown kinds are
// rejected; the node mode follows the resulting property count.
func (g *Graph) SetNodeProperty(id valueobjects.NodeID, name string, kind valueobjects.PropertyKind, value string) error {
	node, err := g.GetNodeByID(id)
	if err != nil {
		return err
	}
	return node.SetProperty(name, kind, value)
}

// RemoveNodeProperty removes a property from a node
func (g *Graph) RemoveNodeProperty(id valueobjects.NodeID, name string) error {
	node, err := g.GetNodeByID(id)
	if err != nil {
		return err
	}
	if !node.RemoveProperty(name) {
		return pkgerrors.NewNotFoundError("property " + name)
	}
	return nil
}

// NodesNear returns visible nodes whose center lies within radius of pos,
// in insertion order, skipping the excluded handles.
func (g *Graph) NodesNear(pos valueobjects.Position, radius float64, exclude ...valueobjects.NodeID) []*entities.Node {
	skip := make(map[valueobjects.NodeID]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	var out []*entities.Node
	for _, id := range g.nodeOrder {
		if _, excluded := skip[id]; excluded {
			continue
		}
		node := g.nodes[id]
		if node.IsHidden() {
			continue
		}
		if node.Position().DistanceTo(pos) <= radius {
			out = append(out, node)
		}
	}
	return out
}

// MergeNodeProperties copies the properties of from into into. Names already
// present on into keep their value. Properties with an unknown kind are
// skipped and reported; the rest of the merge proceeds.
func (g *Graph) MergeNodeProperties(from, into valueobjects.NodeID) (merged []string, skipped []error, err error) {
	src, err := g.GetNodeByID(from)
	if err != nil {
		return nil, nil, err
	}
	dst, err := g.GetNodeByID(into)
	if err != nil {
		return nil, nil, err
	}

	props := src.Properties()
	for _, name := range props.Names() {
		prop, _ := props.Get(name)
		if !prop.Kind().IsValid() {
			skipped = append(skipped, pkgerrors.NewUnknownPropertyKindError(name, string(prop.Kind())))
			continue
		}
		if _, exists := dst.Property(name); exists {
			continue
		}
		if err := dst.SetProperty(name, prop.Kind(), prop.Value()); err != nil {
			skipped = append(skipped, err)
			continue
		}
		merged = append(merged, name)
	}
	return merged, skipped, nil
}

// RelinkNode moves every link of from onto into. Links that would become
// self-loops or duplicate an existing connection are deleted instead.
func (g *Graph) RelinkNode(from, into valueobjects.NodeID) (moved, dropped []*entities.Link, err error) {
	src, err := g.GetNodeByID(from)
	if err != nil {
		return nil, nil, err
	}
	dst, err := g.GetNodeByID(into)
	if err != nil {
		return nil, nil, err
	}
	if from.Equals(into) {
		return nil, nil, pkgerrors.NewValidationError("cannot relink a node onto itself")
	}

	for _, linkID := range src.LinkIDs() {
		link := g.links[linkID]
		other := link.Other(from)
		if other.Equals(into) || g.connected(into, other) {
			if _, err := g.DeleteLink(linkID); err != nil {
				return moved, dropped, err
			}
			dropped = append(dropped, link)
			continue
		}
		if err := link.Reattach(from, into); err != nil {
			return moved, dropped, err
		}
		src.DetachLink(linkID)
		dst.AttachLink(linkID)
		moved = append(moved, link)
	}
	return moved, dropped, nil
}

func (g *Graph) connected(a, b valueobjects.NodeID) bool {
	for _, link := range g.IncidentLinks(a) {
		if link.Connects(a, b) {
			return true
		}
	}
	return false
}

// LinkGeometry computes the current path of a link from its endpoints
func (g *Graph) LinkGeometry(link *entities.Link) (entities.LinkGeometry, error) {
	src, err := g.GetNodeByID(link.Source())
	if err != nil {
		return entities.LinkGeometry{}, err
	}
	tgt, err := g.GetNodeByID(link.Target())
	if err != nil {
		return entities.LinkGeometry{}, err
	}
	return entities.ComputeLinkGeometry(link, src.Position(), tgt.Position()), nil
}

// Validate checks the arena invariants: every link joins two distinct live
// nodes and is registered on both of them.
func (g *Graph) Validate() error {
	for _, id := range g.linkOrder {
		link := g.links[id]
		if link.Source().Equals(link.Target()) {
			return pkgerrors.NewInvalidLinkError("link " + id.String() + " is a self-loop")
		}
		for _, end := range []valueobjects.NodeID{link.Source(), link.Target()} {
			node, ok := g.nodes[end]
			if !ok {
				return pkgerrors.NewInvalidLinkError("link " + id.String() + " has an orphaned endpoint")
			}
			if !containsLinkID(node.LinkIDs(), id) {
				return pkgerrors.NewInternalError("link " + id.String() + " is not registered on node " + end.String())
			}
		}
	}
	return nil
}

func removeNodeID(ids []valueobjects.NodeID, id valueobjects.NodeID) []valueobjects.NodeID {
	for i, existing := range ids {
		if existing.Equals(id) {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func removeLinkID(ids []valueobjects.LinkID, id valueobjects.LinkID) []valueobjects.LinkID {
	for i, existing := range ids {
		if existing.Equals(id) {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func containsLinkID(ids []valueobjects.LinkID, id valueobjects.LinkID) bool {
	for _, existing := range ids {
		if existing.Equals(id) {
			return true
		}
	}
	return false
}
