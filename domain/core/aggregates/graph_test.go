package aggregates

import (
	"testing"

	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	pkgerrors "brain2-canvas/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestNode(t *testing.T, g *Graph, x, y float64) *entities.Node {
	t.Helper()
	pos, err := valueobjects.NewPosition(x, y)
	require.NoError(t, err)
	node, err := entities.NewEmptyNode("concept", pos)
	require.NoError(t, err)
	require.NoError(t, g.AddNode(node))
	return node
}

func TestNewGraph(t *testing.T) {
	g := NewGraph("Test Graph")

	assert.NotEmpty(t, g.ID())
	assert.Equal(t, "Test Graph", g.Name())
	assert.False(t, g.IsReadOnly())
	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.LinkCount())
}

func TestGraph_AddNode(t *testing.T) {
	g := NewGraph("g")
	node := createTestNode(t, g, 0, 0)

	err := g.AddNode(node)
	assert.True(t, pkgerrors.IsConflict(err))

	assert.True(t, pkgerrors.IsValidation(g.AddNode(nil)))

	found, err := g.GetNodeByID(node.ID())
	require.NoError(t, err)
	assert.Same(t, node, found)

	_, err = g.GetNodeByID(valueobjects.NewNodeID())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGraph_AddLink(t *testing.T) {
	g := NewGraph("g")
	a := createTestNode(t, g, 0, 0)
	b := createTestNode(t, g, 100, 0)

	tests := []struct {
		name           string
		source, target valueobjects.NodeID
		wantErr        bool
	}{
		{name: "valid link", source: a.ID(), target: b.ID()},
		{name: "self loop", source: a.ID(), target: a.ID(), wantErr: true},
		{name: "missing target", source: a.ID(), target: valueobjects.NewNodeID(), wantErr: true},
		{name: "missing source", source: valueobjects.NewNodeID(), target: b.ID(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := g.LinkCount()
			link, err := g.AddLink(tt.source, tt.target)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsInvalidLink(err))
				assert.Equal(t, before, g.LinkCount())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, before+1, g.LinkCount())
			assert.Contains(t, a.LinkIDs(), link.ID())
			assert.Contains(t, b.LinkIDs(), link.ID())
		})
	}
	assert.NoError(t, g.Validate())
}

func TestGraph_SelfLinkLeavesNoLinks(t *testing.T) {
	g := NewGraph("g")
	a := createTestNode(t, g, 0, 0)

	_, err := g.AddLink(a.ID(), a.ID())
	assert.True(t, pkgerrors.IsInvalidLink(err))
	assert.Empty(t, g.ListLinks())
	assert.Equal(t, 0, a.Degree())
}

func TestGraph_DeleteNode(t *testing.T) {
	g := NewGraph("g")
	a := createTestNode(t, g, 0, 0)
	b := createTestNode(t, g, 100, 0)
	c := createTestNode(t, g, 200, 0)
	ab, err := g.AddLink(a.ID(), b.ID())
	require.NoError(t, err)
	_, err = g.AddLink(b.ID(), c.ID())
	require.NoError(t, err)

	t.Run("refused while links remain", func(t *testing.T) {
		_, err := g.DeleteNode(a.ID(), false)
		assert.True(t, pkgerrors.IsConflict(err))
		assert.Equal(t, 3, g.NodeCount())
	})

	t.Run("cascade removes links first", func(t *testing.T) {
		removed, err := g.DeleteNode(a.ID(), true)
		require.NoError(t, err)
		require.Len(t, removed, 1)
		assert.Equal(t, ab.ID(), removed[0].ID())
		assert.Equal(t, 2, g.NodeCount())
		assert.Equal(t, 1, g.LinkCount())
		assert.Equal(t, 1, b.Degree())
		assert.NoError(t, g.Validate())
	})

	t.Run("unknown node", func(t *testing.T) {
		_, err := g.DeleteNode(valueobjects.NewNodeID(), true)
		assert.True(t, pkgerrors.IsNotFound(err))
	})
}

func TestGraph_ListOrderIsInsertionOrder(t *testing.T) {
	g := NewGraph("g")
	var ids []valueobjects.NodeID
	for i := 0; i < 5; i++ {
		ids = append(ids, createTestNode(t, g, float64(i*10), 0).ID())
	}
	_, err := g.DeleteNode(ids[2], false)
	require.NoError(t, err)

	var got []valueobjects.NodeID
	for _, n := range g.ListNodes() {
		got = append(got, n.ID())
	}
	assert.Equal(t, []valueobjects.NodeID{ids[0], ids[1], ids[3], ids[4]}, got)
}

func TestGraph_IncidentLinks(t *testing.T) {
	g := NewGraph("g")
	a := createTestNode(t, g, 0, 0)
	b := createTestNode(t, g, 100, 0)
	c := createTestNode(t, g, 200, 0)
	ab, _ := g.AddLink(a.ID(), b.ID())
	_, _ = g.AddLink(b.ID(), c.ID())

	links := g.IncidentLinks(a.ID())
	require.Len(t, links, 1)
	assert.Equal(t, ab.ID(), links[0].ID())
	assert.Len(t, g.IncidentLinks(b.ID()), 2)
	assert.Nil(t, g.IncidentLinks(valueobjects.NewNodeID()))
}

func TestGraph_SetNodeProperty(t *testing.T) {
	g := NewGraph("g")
	a := createTestNode(t, g, 0, 0)

	require.NoError(t, g.SetNodeProperty(a.ID(), "title", valueobjects.KindNormal, "A"))
	assert.Equal(t, entities.ModeFull, a.Mode())

	err := g.SetNodeProperty(a.ID(), "blob", valueobjects.PropertyKind("binary"), "x")
	assert.True(t, pkgerrors.IsUnknownPropertyKind(err))

	require.NoError(t, g.RemoveNodeProperty(a.ID(), "title"))
	assert.Equal(t, entities.ModeEmpty, a.Mode())
	assert.True(t, pkgerrors.IsNotFound(g.RemoveNodeProperty(a.ID(), "title")))
}

func TestGraph_NodesNear(t *testing.T) {
	g := NewGraph("g")
	a := createTestNode(t, g, 0, 0)
	b := createTestNode(t, g, 5, 5)
	hidden := createTestNode(t, g, 1, 1)
	hidden.SetHidden(true)
	createTestNode(t, g, 50, 50)

	origin := valueobjects.Origin()
	near := g.NodesNear(origin, 10)
	require.Len(t, near, 2)
	assert.Equal(t, a.ID(), near[0].ID())
	assert.Equal(t, b.ID(), near[1].ID())

	near = g.NodesNear(origin, 10, a.ID())
	require.Len(t, near, 1)
	assert.Equal(t, b.ID(), near[0].ID())
}

func TestGraph_MergeNodeProperties(t *testing.T) {
	g := NewGraph("g")
	pos := valueobjects.Origin()

	props := valueobjects.NewProperties()
	props.Set("title", valueobjects.ReconstructProperty("normal", "from"))
	props.Set("notes", valueobjects.ReconstructProperty("text", "long"))
	props.Set("blob", valueobjects.ReconstructProperty("binary", "??"))
	from, err := entities.ReconstructNode(valueobjects.NewNodeID(), "concept", pos, false, false, props)
	require.NoError(t, err)
	require.NoError(t, g.AddNode(from))

	into := createTestNode(t, g, 0, 0)
	require.NoError(t, g.SetNodeProperty(into.ID(), "title", valueobjects.KindNormal, "into"))

	merged, skipped, err := g.MergeNodeProperties(from.ID(), into.ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, merged)
	require.Len(t, skipped, 1)
	assert.True(t, pkgerrors.IsUnknownPropertyKind(skipped[0]))

	title, _ := into.Property("title")
	assert.Equal(t, "into", title.Value())
	assert.True(t, into.Properties().Has("notes"))
	assert.False(t, into.Properties().Has("blob"))
}

func TestGraph_RelinkNode(t *testing.T) {
	g := NewGraph("g")
	a := createTestNode(t, g, 0, 0)
	b := createTestNode(t, g, 100, 0)
	c := createTestNode(t, g, 200, 0)
	d := createTestNode(t, g, 300, 0)

	ab, _ := g.AddLink(a.ID(), b.ID()) // becomes a self-loop on b
	ac, _ := g.AddLink(a.ID(), c.ID()) // duplicates b-c
	ad, _ := g.AddLink(d.ID(), a.ID()) // moves onto b
	_, _ = g.AddLink(b.ID(), c.ID())

	moved, dropped, err := g.RelinkNode(a.ID(), b.ID())
	require.NoError(t, err)

	require.Len(t, moved, 1)
	assert.Equal(t, ad.ID(), moved[0].ID())
	assert.Equal(t, b.ID(), moved[0].Target())
	assert.ElementsMatch(t, []valueobjects.LinkID{ab.ID(), ac.ID()},
		[]valueobjects.LinkID{dropped[0].ID(), dropped[1].ID()})

	assert.False(t, a.HasLinks())
	assert.NoError(t, g.Validate())

	_, err = g.DeleteNode(a.ID(), false)
	assert.NoError(t, err)
}

func TestGraph_LinkGeometryFollowsNodes(t *testing.T) {
	g := NewGraph("g")
	a := createTestNode(t, g, 0, 0)
	b := createTestNode(t, g, 100, 0)
	link, err := g.AddLink(a.ID(), b.ID())
	require.NoError(t, err)

	moved, _ := valueobjects.NewPosition(10, 10)
	require.NoError(t, g.MoveNode(a.ID(), moved))

	geo, err := g.LinkGeometry(link)
	require.NoError(t, err)
	assert.True(t, geo.Source.Equals(moved))
	assert.Equal(t, 100.0, geo.Target.X())
	assert.Equal(t, 0.0, geo.Target.Y())
}

func TestGraph_SnapshotRoundTrip(t *testing.T) {
	g := NewGraph("g")
	a := createTestNode(t, g, 0, 0)
	b := createTestNode(t, g, 100, 0)
	require.NoError(t, g.SetNodeProperty(a.ID(), "title", valueobjects.KindNormal, "A"))
	link, err := g.AddLink(a.ID(), b.ID())
	require.NoError(t, err)
	link.SetLabel("relates")
	g.SetReadOnly(true)

	snap := g.Snapshot()
	require.Len(t, snap.Nodes, 2)
	require.Len(t, snap.Links, 1)
	assert.Equal(t, "full", snap.Nodes[0].Mode)

	restored, err := RestoreGraph(snap)
	require.NoError(t, err)
	assert.Equal(t, g.ID(), restored.ID())
	assert.True(t, restored.IsReadOnly())
	assert.Equal(t, snap, restored.Snapshot())
	assert.NoError(t, restored.Validate())
}

func TestRestoreGraph_RejectsSelfLoop(t *testing.T) {
	id := valueobjects.NewNodeID().String()
	snap := GraphSnapshot{
		Name:  "bad",
		Nodes: []NodeSnapshot{{ID: id, TypeID: "concept", Mode: "empty"}},
		Links: []LinkSnapshot{{ID: valueobjects.NewLinkID().String(), Source: id, Target: id, AnchorPos: 0.5}},
	}

	_, err := RestoreGraph(snap)
	assert.True(t, pkgerrors.IsInvalidLink(err))
}
