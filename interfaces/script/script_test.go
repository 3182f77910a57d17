package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"brain2-canvas/application/actionlog"
	"brain2-canvas/application/commands/bus"
	commandhandlers "brain2-canvas/application/commands/handlers"
	"brain2-canvas/application/interaction"
	"brain2-canvas/application/ports"
	querybus "brain2-canvas/application/queries/bus"
	queryhandlers "brain2-canvas/application/queries/handlers"
	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/core/valueobjects"
	pkgerrors "brain2-canvas/pkg/errors"
)

func newTestPlayer(t *testing.T) (*Player, *interaction.Engine) {
	t.Helper()
	viewport, err := valueobjects.NewViewport(0, 0, 800, 600)
	require.NoError(t, err)
	engine, err := interaction.NewEngine(aggregates.NewGraph("script"), viewport,
		interaction.ScreenSize{Width: 800, Height: 600},
		interaction.Dependencies{
			Persistence: ports.NopPersistence{},
			Confirmer:   ports.StaticConfirmer(true),
			LogOptions:  []actionlog.Option{actionlog.WithRunner(actionlog.SyncRunner)},
		})
	require.NoError(t, err)

	cb := bus.NewCommandBus()
	require.NoError(t, commandhandlers.RegisterAll(cb, engine, zap.NewNop()))
	qb := querybus.NewQueryBus()
	require.NoError(t, queryhandlers.RegisterAll(qb, engine))

	return NewPlayer(engine, cb, qb, zap.NewNop()), engine
}

const linkAndDrag = `
name: link and drag
screen: {width: 800, height: 600}
steps:
  - create_node: {type: concept, x: 100, y: 100}
    as: a
  - create_node: {type: concept, x: 400, y: 100}
    as: b
  - drag:
      from: {node: $a}
      to: {node: $b}
      steps: 4
      modifiers: {shift: true}
  - expect: {links: 1, last_action: createLink, gesture: none}
  - drag:
      from: {node: $a}
      to: {node: $a, x: 50, y: 20}
  - expect:
      positions:
        $a: {x: 150, y: 120}
        $b: {x: 400, y: 100}
      last_action: move
  - save: {}
  - expect: {dirty: false}
`

func TestPlay_LinkAndDrag(t *testing.T) {
	s, err := Parse([]byte(linkAndDrag))
	require.NoError(t, err)

	player, engine := newTestPlayer(t)
	result, err := player.Play(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, "link and drag", result.Script)
	assert.Equal(t, 8, result.Steps)
	require.Contains(t, result.Aliases, "a")
	require.Contains(t, result.Aliases, "b")

	snap := engine.Snapshot()
	require.Len(t, snap.Links, 1)
	assert.Equal(t, result.Aliases["a"], snap.Links[0].Source)
	assert.Equal(t, result.Aliases["b"], snap.Links[0].Target)
}

const editAndDelete = `
steps:
  - create_node:
      type: concept
      x: 100
      y: 100
      kind: full
      properties:
        - {name: title, kind: text, value: first}
    as: a
  - create_node: {type: concept, x: 300, y: 300}
    as: b
  - create_link: {source: $a, target: $b}
    as: ab
  - update_link: {link: $ab, label: next, anchorPos: 0.25}
  - set_property: {node: $b, name: note, kind: text, value: hi}
  - move_node: {node: $b, x: 320, y: 310}
  - expect:
      nodes: 2
      links: 1
      positions: {$b: {x: 320, y: 310}}
  - click: {node: $b}
  - expect: {selected_nodes: 1}
  - key: {key: Delete}
  - expect: {nodes: 1, links: 0, selected_nodes: 0}
  - set_read_only: {readOnly: true}
  - drag: {from: {node: $a}, to: {x: 10, y: 10}}
    expect_error: read_only
  - key: {key: ArrowLeft}
  - expect: {last_action: pan}
`

func TestPlay_EditAndDelete(t *testing.T) {
	s, err := Parse([]byte(editAndDelete))
	require.NoError(t, err)

	player, engine := newTestPlayer(t)
	_, err = player.Play(context.Background(), s)
	require.NoError(t, err)

	snap := engine.Snapshot()
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, 100.0, snap.Nodes[0].X)
	assert.True(t, snap.ReadOnly)
}

func TestPlay_FailingExpectation(t *testing.T) {
	s, err := Parse([]byte(`
steps:
  - create_node: {type: concept}
  - expect: {nodes: 3, links: 0}
`))
	require.NoError(t, err)

	player, _ := newTestPlayer(t)
	_, err = player.Play(context.Background(), s)
	require.Error(t, err)

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, 1, stepErr.Index)
	assert.Equal(t, "expect", stepErr.Kind)
	assert.Contains(t, err.Error(), "nodes: want 3, got 1")
	assert.Equal(t, "EXPECTATION_FAILED", pkgerrors.GetAppError(err).Code)
}

func TestPlay_UnexpectedSuccess(t *testing.T) {
	s, err := Parse([]byte(`
steps:
  - create_node: {type: concept}
    expect_error: read_only
`))
	require.NoError(t, err)

	player, _ := newTestPlayer(t)
	_, err = player.Play(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step succeeded")
}

func TestPlay_CancelledContext(t *testing.T) {
	s, err := Parse([]byte("steps:\n  - key: {key: f}\n"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	player, _ := newTestPlayer(t)
	_, err = player.Play(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty", input: "", wantErr: "script is empty"},
		{name: "no steps", input: "name: x\n", wantErr: "steps"},
		{name: "unknown field", input: "steps:\n  - jump: {}\n", wantErr: "invalid script"},
		{name: "empty step", input: "steps:\n  - as: a\n", wantErr: "step has no action"},
		{
			name:    "two actions",
			input:   "steps:\n  - key: {key: f}\n    save: {}\n",
			wantErr: "more than one action: key, save",
		},
		{
			name:    "alias on key",
			input:   "steps:\n  - key: {key: f}\n    as: k\n",
			wantErr: "only create_node and create_link",
		},
		{
			name:    "duplicate alias",
			input:   "steps:\n  - create_node: {type: a}\n    as: n\n  - create_node: {type: b}\n    as: n\n",
			wantErr: `alias "n" already defined by step 1`,
		},
		{name: "missing key", input: "steps:\n  - key: {}\n", wantErr: "key is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err), "unexpected error %v", err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - key: {key: f}\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Name)
	assert.Equal(t, "key", s.Steps[0].Kind())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, pkgerrors.IsNotFound(err))
}
