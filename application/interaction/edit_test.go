package interaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brain2-canvas/domain/config"
	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/domain/events"
	pkgerrors "brain2-canvas/pkg/errors"
)

func TestCreateNode(t *testing.T) {
	tests := []struct {
		name     string
		spec     NewNode
		wantMode entities.NodeMode
		wantErr  func(error) bool
	}{
		{
			name:     "empty",
			spec:     NewNode{Kind: NodeKindEmpty, TypeID: "concept"},
			wantMode: entities.ModeEmpty,
		},
		{
			name: "full",
			spec: NewNode{Kind: NodeKindFull, TypeID: "concept", Properties: []PropertyInput{
				{Name: "title", Kind: "text", Value: "hello"},
				{Name: "meta", Kind: "json", Value: `{"a":1}`},
			}},
			wantMode: entities.ModeFull,
		},
		{
			name:     "special",
			spec:     NewNode{Kind: NodeKindSpecial, TypeID: "start"},
			wantMode: entities.ModeSpecial,
		},
		{
			name:    "full without properties",
			spec:    NewNode{Kind: NodeKindFull, TypeID: "concept"},
			wantErr: pkgerrors.IsValidation,
		},
		{
			name: "unknown property kind",
			spec: NewNode{Kind: NodeKindFull, TypeID: "concept", Properties: []PropertyInput{
				{Name: "title", Kind: "markdown", Value: "x"},
			}},
			wantErr: pkgerrors.IsUnknownPropertyKind,
		},
		{
			name: "invalid json",
			spec: NewNode{Kind: NodeKindFull, TypeID: "concept", Properties: []PropertyInput{
				{Name: "meta", Kind: "json", Value: "{"},
			}},
			wantErr: pkgerrors.IsValidation,
		},
		{
			name:    "empty with properties",
			spec:    NewNode{Kind: NodeKindEmpty, TypeID: "concept", Properties: []PropertyInput{{Name: "a", Kind: "normal"}}},
			wantErr: pkgerrors.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := createTestEngine(t, nil)
			node, err := te.CreateNode(tt.spec)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected error %v", err)
				assert.Zero(t, te.Context().Graph.NodeCount())
				assert.Zero(t, te.Log().Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, node.Mode())

			last := te.lastAction(t)
			assert.Equal(t, events.ActionCreateNode, last.Name)
			assert.Equal(t, string(tt.wantMode), last.ExtraInfo["mode"])
		})
	}
}

func TestNodePropertyEdits(t *testing.T) {
	te := createTestEngine(t, nil)
	node := te.addNode(t, 0, 0)

	require.NoError(t, te.SetNodeProperty(node.ID(), "title", valueobjects.KindText, "hello"))
	assert.Equal(t, entities.ModeFull, node.Mode())
	assert.Equal(t, events.ActionUpdateNode, te.lastAction(t).Name)

	err := te.SetNodeProperty(node.ID(), "meta", valueobjects.KindJSON, "not json")
	assert.True(t, pkgerrors.IsValidation(err))

	require.NoError(t, te.RemoveNodeProperty(node.ID(), "title"))
	assert.Equal(t, entities.ModeEmpty, node.Mode())

	err = te.SetNodeProperty(valueobjects.NewNodeID(), "title", valueobjects.KindText, "x")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestMoveNode(t *testing.T) {
	te := createTestEngine(t, nil)
	a := te.addNode(t, 0, 0)
	b := te.addNode(t, 50, 50)
	link, err := te.CreateLink(a.ID(), b.ID())
	require.NoError(t, err)

	require.NoError(t, te.MoveNode(a.ID(), pos(t, -20, 30)))

	assert.True(t, te.renderer.paths[link.ID()].Source.Equals(pos(t, -20, 30)))
	last := te.lastAction(t)
	assert.Equal(t, events.ActionMove, last.Name)
	assert.InDelta(t, -20.0, last.ExtraInfo["dx"], 1e-9)
}

func TestUpdateLink(t *testing.T) {
	te := createTestEngine(t, nil)
	a := te.addNode(t, 0, 0)
	b := te.addNode(t, 100, 0)
	link, err := te.CreateLink(a.ID(), b.ID())
	require.NoError(t, err)

	label, anchor, bender := "causes", 0.25, 12.0
	require.NoError(t, te.UpdateLink(link.ID(), LinkUpdate{Label: &label, AnchorPos: &anchor, Bender: &bender}))

	assert.Equal(t, "causes", link.Label())
	geo := te.renderer.paths[link.ID()]
	assert.InDelta(t, 25.0, geo.LabelAnchor.X(), 1e-9)
	assert.InDelta(t, 12.0, geo.LabelAnchor.Y(), 1e-9)

	last := te.lastAction(t)
	assert.Equal(t, events.ActionUpdateLink, last.Name)
	assert.Equal(t, []string{link.ID().String()}, last.LinkRefs)
	assert.Len(t, last.ExtraInfo, 3)

	before := te.Log().Len()
	require.NoError(t, te.UpdateLink(link.ID(), LinkUpdate{}))
	assert.Equal(t, before, te.Log().Len(), "empty updates are not logged")

	bad := 1.5
	assert.Error(t, te.UpdateLink(link.ID(), LinkUpdate{AnchorPos: &bad}))
}

func TestDeleteNode_Cascades(t *testing.T) {
	te := createTestEngine(t, nil)
	a := te.addNode(t, 0, 0)
	b := te.addNode(t, 100, 0)
	c := te.addNode(t, 0, 100)
	_, err := te.CreateLink(a.ID(), b.ID())
	require.NoError(t, err)
	_, err = te.CreateLink(c.ID(), a.ID())
	require.NoError(t, err)

	require.NoError(t, te.DeleteNode(a.ID()))

	graph := te.Context().Graph
	assert.Equal(t, 2, graph.NodeCount())
	assert.Zero(t, graph.LinkCount())
	assert.Empty(t, b.LinkIDs())
	assert.Empty(t, c.LinkIDs())
	names := te.actionNames()
	assert.Equal(t, []events.ActionName{events.ActionDeleteLink, events.ActionDeleteLink, events.ActionDeleteNode}, names[len(names)-3:])
}

func TestDeleteSelection_CountsRemovedElements(t *testing.T) {
	te := createTestEngine(t, nil)
	a := te.addNode(t, 0, 0)
	b := te.addNode(t, 100, 0)
	c := te.addNode(t, 200, 0)
	_, err := te.CreateLink(a.ID(), b.ID())
	require.NoError(t, err)
	bc, err := te.CreateLink(b.ID(), c.ID())
	require.NoError(t, err)
	te.Click(a.ID(), Modifiers{})

	removed, err := te.DeleteSelection()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, te.Context().Graph.LinkCount())
	_, err = te.Context().Graph.GetLink(bc.ID())
	assert.NoError(t, err)

	removed, err = te.DeleteSelection()
	require.NoError(t, err)
	assert.Zero(t, removed, "nothing left selected")
}

func TestReadOnlyGraph(t *testing.T) {
	te := createTestEngine(t, smallNodes)
	a := te.addNode(t, 10, 10)
	b := te.addNode(t, 100, 100)
	te.SetReadOnly(true)
	before := te.Log().Len()

	err := te.PointerDown(PointerEvent{Position: pt(10, 10)})
	assert.True(t, pkgerrors.IsReadOnly(err))
	assert.Equal(t, GestureNone, te.ActiveGesture())

	err = te.PointerDown(PointerEvent{Position: pt(10, 10), Modifiers: shift})
	assert.True(t, pkgerrors.IsReadOnly(err))

	_, err = te.CreateLink(a.ID(), b.ID())
	assert.True(t, pkgerrors.IsReadOnly(err))
	_, err = te.CreateNode(NewNode{TypeID: "concept"})
	assert.True(t, pkgerrors.IsReadOnly(err))
	assert.True(t, pkgerrors.IsReadOnly(te.DeleteNode(a.ID())))

	// viewing gestures still work
	te.drag(t, pt(0, 0), pt(50, 50), Modifiers{})
	assert.True(t, a.IsSelected())
	te.Pan(1, 0, TriggerDiscrete)
	assert.InDelta(t, 80.0, te.Viewport().Left(), 1e-9)

	assert.True(t, a.Position().Equals(pos(t, 10, 10)))
	assert.Equal(t, 2, te.Context().Graph.NodeCount())
	assert.Len(t, te.notifier.messages, 5)
	assert.Equal(t, before+1, te.Log().Len(), "only the pan is logged")
}

func TestPointerDown_GestureGate(t *testing.T) {
	te := createTestEngine(t, nil)
	a := te.addNode(t, 0, 0)

	require.NoError(t, te.PointerDown(PointerEvent{Position: pt(0, 0)}))
	assert.Equal(t, GestureDrag, te.ActiveGesture())

	err := te.PointerDown(PointerEvent{Position: pt(300, 300)})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeGestureActive))
	assert.Equal(t, GestureDrag, te.ActiveGesture())

	te.Wheel(WheelEvent{Position: pt(0, 0), DeltaY: -1})
	assertViewport(t, te.Viewport(), 0, 0, 800, 600)

	te.PointerUp(PointerEvent{Position: pt(20, 0)})
	assert.Equal(t, GestureNone, te.ActiveGesture())
	assert.True(t, a.Position().Equals(pos(t, 20, 0)))

	// a stray release without a gesture is ignored
	te.PointerUp(PointerEvent{Position: pt(20, 0)})
	te.PointerMove(PointerEvent{Position: pt(60, 0)})
	assert.True(t, a.Position().Equals(pos(t, 20, 0)))
}

func TestAutosave(t *testing.T) {
	te := createTestEngine(t, nil)
	a := te.addNode(t, 0, 0)
	require.Len(t, te.persistence.projects, 1, "createNode autosaves")

	te.Pan(1, 0, TriggerDiscrete)
	te.Flush()
	assert.Len(t, te.persistence.projects, 1, "view changes do not autosave")

	// the viewport moved 80 to the right, so A sits at screen x=-80
	te.drag(t, pt(-80, 0), pt(-60, 0), Modifiers{})
	assert.True(t, a.Position().Equals(pos(t, 20, 0)))
	assert.Len(t, te.persistence.projects, 2)
	last := te.persistence.projects[1]
	require.NotNil(t, last.Viewport)
	assert.InDelta(t, 80.0, last.Viewport.Left, 1e-9)

	for _, act := range te.persistence.actions {
		assert.NotEmpty(t, act.ID)
	}
	assert.False(t, te.SaveStatus().Dirty)
}

func TestExplicitSave(t *testing.T) {
	te := createTestEngine(t, func(cfg *config.InteractionConfig) { cfg.AutoSave = false })
	te.addNode(t, 0, 0)
	assert.Empty(t, te.persistence.projects)
	assert.True(t, te.SaveStatus().Dirty)

	require.NoError(t, te.Save(context.Background()))
	require.Len(t, te.persistence.projects, 1)
	assert.Len(t, te.persistence.projects[0].Nodes, 1)
	assert.False(t, te.SaveStatus().Dirty)
}

func TestNewEngine_Validation(t *testing.T) {
	v, err := valueobjects.NewViewport(0, 0, 10, 10)
	require.NoError(t, err)

	_, err = NewEngine(nil, v, ScreenSize{Width: 10, Height: 10}, Dependencies{})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewEngine(aggregates.NewGraph("g"), v, ScreenSize{}, Dependencies{})
	assert.True(t, pkgerrors.IsValidation(err))

	e, err := NewEngine(aggregates.NewGraph("g"), v, ScreenSize{Width: 10, Height: 10}, Dependencies{})
	require.NoError(t, err)
	assert.Error(t, e.SetScreenSize(ScreenSize{Width: -1, Height: 1}))
	assert.NoError(t, e.SetScreenSize(ScreenSize{Width: 20, Height: 20}))
}
