package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"brain2-canvas/application/actionlog"
	"brain2-canvas/application/commands"
	"brain2-canvas/application/commands/bus"
	"brain2-canvas/application/interaction"
	"brain2-canvas/application/ports"
	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/domain/events"
	pkgerrors "brain2-canvas/pkg/errors"
)

func createTestBus(t *testing.T) (*bus.CommandBus, *interaction.Engine) {
	t.Helper()
	viewport, err := valueobjects.NewViewport(0, 0, 800, 600)
	require.NoError(t, err)
	engine, err := interaction.NewEngine(aggregates.NewGraph("commands"), viewport,
		interaction.ScreenSize{Width: 800, Height: 600},
		interaction.Dependencies{
			Persistence: ports.NopPersistence{},
			Confirmer:   ports.StaticConfirmer(true),
			LogOptions:  []actionlog.Option{actionlog.WithRunner(actionlog.SyncRunner)},
		})
	require.NoError(t, err)

	b := bus.NewCommandBus(bus.LoggingMiddleware(zap.NewNop()))
	require.NoError(t, RegisterAll(b, engine, zap.NewNop()))
	return b, engine
}

func createNode(t *testing.T, b *bus.CommandBus, x, y float64) string {
	t.Helper()
	cmd := &commands.CreateNodeCommand{TypeID: "concept", X: x, Y: y}
	require.NoError(t, b.Send(context.Background(), cmd))
	require.NotEmpty(t, cmd.NodeID)
	return cmd.NodeID
}

func TestNodeCommands(t *testing.T) {
	ctx := context.Background()
	b, engine := createTestBus(t)

	id := createNode(t, b, 10, 20)
	require.NoError(t, b.Send(ctx, &commands.SetNodePropertyCommand{NodeID: id, Name: "title", Kind: "text", Value: "hello"}))
	require.NoError(t, b.Send(ctx, &commands.MoveNodeCommand{NodeID: id, X: 30, Y: 40}))

	snap := engine.Snapshot()
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, 30.0, snap.Nodes[0].X)
	assert.Equal(t, "full", snap.Nodes[0].Mode)
	require.Len(t, snap.Nodes[0].Properties, 1)
	assert.Equal(t, "hello", snap.Nodes[0].Properties[0].Value)

	require.NoError(t, b.Send(ctx, &commands.RemoveNodePropertyCommand{NodeID: id, Name: "title"}))
	assert.Equal(t, "empty", engine.Snapshot().Nodes[0].Mode)

	require.NoError(t, b.Send(ctx, &commands.DeleteNodeCommand{NodeID: id}))
	assert.Empty(t, engine.Snapshot().Nodes)
}

func TestNodeCommands_Errors(t *testing.T) {
	ctx := context.Background()
	b, _ := createTestBus(t)
	id := createNode(t, b, 0, 0)

	tests := []struct {
		name  string
		cmd   bus.Command
		check func(error) bool
	}{
		{"missing type", &commands.CreateNodeCommand{}, pkgerrors.IsValidation},
		{"bad node kind", &commands.CreateNodeCommand{TypeID: "x", Kind: "huge"}, pkgerrors.IsValidation},
		{"property without name", &commands.CreateNodeCommand{TypeID: "x", Kind: "full", Properties: []interaction.PropertyInput{{Kind: "text"}}}, pkgerrors.IsValidation},
		{"unknown property kind", &commands.SetNodePropertyCommand{NodeID: id, Name: "n", Kind: "yaml"}, pkgerrors.IsUnknownPropertyKind},
		{"malformed id", &commands.MoveNodeCommand{NodeID: "nope"}, pkgerrors.IsValidation},
		{"missing node", &commands.DeleteNodeCommand{NodeID: valueobjects.NewNodeID().String()}, pkgerrors.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Send(ctx, tt.cmd)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}
}

func TestLinkCommands(t *testing.T) {
	ctx := context.Background()
	b, engine := createTestBus(t)
	a := createNode(t, b, 0, 0)
	c := createNode(t, b, 100, 0)

	create := &commands.CreateLinkCommand{SourceID: a, TargetID: c}
	require.NoError(t, b.Send(ctx, create))
	require.NotEmpty(t, create.LinkID)

	label, anchor := "next", 0.75
	require.NoError(t, b.Send(ctx, &commands.UpdateLinkCommand{LinkID: create.LinkID, Label: &label, AnchorPos: &anchor}))
	snap := engine.Snapshot()
	require.Len(t, snap.Links, 1)
	assert.Equal(t, "next", snap.Links[0].Label)
	assert.Equal(t, 0.75, snap.Links[0].AnchorPos)

	bad := 2.0
	err := b.Send(ctx, &commands.UpdateLinkCommand{LinkID: create.LinkID, AnchorPos: &bad})
	assert.True(t, pkgerrors.IsValidation(err))

	err = b.Send(ctx, &commands.CreateLinkCommand{SourceID: a, TargetID: a})
	assert.True(t, pkgerrors.IsValidation(err), "self links are refused before reaching the graph")

	require.NoError(t, b.Send(ctx, &commands.DeleteLinkCommand{LinkID: create.LinkID}))
	assert.Empty(t, engine.Snapshot().Links)
}

func TestCanvasCommands(t *testing.T) {
	ctx := context.Background()
	b, engine := createTestBus(t)
	a := createNode(t, b, 0, 0)

	require.NoError(t, b.Send(ctx, &commands.SetReadOnlyCommand{ReadOnly: true}))
	err := b.Send(ctx, &commands.MoveNodeCommand{NodeID: a, X: 5, Y: 5})
	assert.True(t, pkgerrors.IsReadOnly(err))

	require.NoError(t, b.Send(ctx, &commands.SetReadOnlyCommand{ReadOnly: false}))
	require.NoError(t, b.Send(ctx, &commands.SaveProjectCommand{}))
	assert.False(t, engine.SaveStatus().Dirty)

	engine.SelectAll()
	del := &commands.DeleteSelectionCommand{}
	require.NoError(t, b.Send(ctx, del))
	assert.Equal(t, 1, del.Removed)

	last, ok := engine.Log().Last()
	require.True(t, ok)
	assert.Equal(t, events.ActionDeleteNode, last.Name)
}
