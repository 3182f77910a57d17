package entities

import (
	"testing"

	"brain2-canvas/domain/core/valueobjects"
	pkgerrors "brain2-canvas/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPos(t *testing.T, x, y float64) valueobjects.Position {
	t.Helper()
	p, err := valueobjects.NewPosition(x, y)
	require.NoError(t, err)
	return p
}

func TestNode_ModeFollowsProperties(t *testing.T) {
	node, err := NewEmptyNode("concept", mustPos(t, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, ModeEmpty, node.Mode())
	assert.IsType(t, EmptyNode{}, node.Variant())

	require.NoError(t, node.SetProperty("title", valueobjects.KindNormal, "A"))
	assert.Equal(t, ModeFull, node.Mode())
	full, ok := node.Variant().(FullNode)
	require.True(t, ok)
	assert.Equal(t, 1, full.Properties().Len())

	node.RemoveProperty("title")
	assert.Equal(t, ModeEmpty, node.Mode())
}

func TestNode_SpecialStaysSpecial(t *testing.T) {
	node, err := NewSpecialNode("image", mustPos(t, 0, 0))
	require.NoError(t, err)
	require.NoError(t, node.SetProperty("src", valueobjects.KindText, "a.png"))

	assert.Equal(t, ModeSpecial, node.Mode())
	assert.Same(t, node, node.Variant().Node())
}

func TestNewFullNode(t *testing.T) {
	_, err := NewFullNode("concept", mustPos(t, 0, 0), valueobjects.NewProperties())
	assert.True(t, pkgerrors.IsValidation(err))

	bad := valueobjects.NewProperties()
	bad.Set("x", valueobjects.ReconstructProperty("blob", "?"))
	_, err = NewFullNode("concept", mustPos(t, 0, 0), bad)
	assert.True(t, pkgerrors.IsUnknownPropertyKind(err))

	props := valueobjects.NewProperties()
	prop, err := valueobjects.NewProperty("title", valueobjects.KindNormal, "A")
	require.NoError(t, err)
	props.Set("title", prop)
	node, err := NewFullNode("concept", mustPos(t, 0, 0), props)
	require.NoError(t, err)
	assert.Equal(t, ModeFull, node.Mode())
}

func TestNode_SetPropertyRejectsUnknownKind(t *testing.T) {
	node, err := NewEmptyNode("concept", mustPos(t, 0, 0))
	require.NoError(t, err)

	err = node.SetProperty("x", valueobjects.PropertyKind("blob"), "1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnknownPropertyKind(err))
	assert.Equal(t, ModeEmpty, node.Mode())
}

func TestNode_LinkHandles(t *testing.T) {
	node, err := NewEmptyNode("concept", mustPos(t, 0, 0))
	require.NoError(t, err)
	a, b := valueobjects.NewLinkID(), valueobjects.NewLinkID()

	node.AttachLink(a)
	node.AttachLink(b)
	node.AttachLink(a)
	assert.Equal(t, 2, node.Degree())

	assert.True(t, node.DetachLink(a))
	assert.False(t, node.DetachLink(a))
	assert.Equal(t, []valueobjects.LinkID{b}, node.LinkIDs())
}

func TestNode_SetSelectedReportsChange(t *testing.T) {
	node, err := NewEmptyNode("concept", mustPos(t, 0, 0))
	require.NoError(t, err)

	assert.True(t, node.SetSelected(true))
	assert.False(t, node.SetSelected(true))
	assert.True(t, node.IsSelected())
}
