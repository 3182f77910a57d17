package interaction

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"brain2-canvas/application/actionlog"
	"brain2-canvas/application/ports"
	"brain2-canvas/domain/config"
	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/domain/events"
)

// recordingRenderer remembers what the engine asked it to paint
type recordingRenderer struct {
	present   map[ports.ElementRef]bool
	moves     map[valueobjects.NodeID]valueobjects.Position
	paths     map[valueobjects.LinkID]entities.LinkGeometry
	redraws   map[valueobjects.LinkID]int
	selected  map[ports.ElementRef]bool
	removed   []ports.ElementRef
	rect      *valueobjects.Bounds
	rectDraws int
	pending   bool
	viewport  *valueobjects.Viewport
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{
		present:  make(map[ports.ElementRef]bool),
		moves:    make(map[valueobjects.NodeID]valueobjects.Position),
		paths:    make(map[valueobjects.LinkID]entities.LinkGeometry),
		redraws:  make(map[valueobjects.LinkID]int),
		selected: make(map[ports.ElementRef]bool),
	}
}

func (r *recordingRenderer) AnchorFor(ref ports.ElementRef) (ports.Handle, bool) {
	if !r.present[ref] {
		return nil, false
	}
	return ref, true
}

func (r *recordingRenderer) MoveTo(h ports.Handle, x, y float64) {
	ref := h.(ports.ElementRef)
	pos, _ := valueobjects.NewPosition(x, y)
	r.moves[ref.Node] = pos
}

func (r *recordingRenderer) RedrawLinkPath(geo entities.LinkGeometry) {
	r.paths[geo.LinkID] = geo
	r.redraws[geo.LinkID]++
}

func (r *recordingRenderer) DrawSelectionRectangle(b valueobjects.Bounds) {
	r.rect = &b
	r.rectDraws++
}

func (r *recordingRenderer) RemoveSelectionRectangle() { r.rect = nil }

func (r *recordingRenderer) DrawNode(v entities.NodeVariant) {
	r.present[ports.NodeRef(v.Node().ID())] = true
}

func (r *recordingRenderer) DrawLink(geo entities.LinkGeometry) {
	r.present[ports.LinkRef(geo.LinkID)] = true
	r.paths[geo.LinkID] = geo
}

func (r *recordingRenderer) Remove(ref ports.ElementRef) {
	delete(r.present, ref)
	r.removed = append(r.removed, ref)
}

func (r *recordingRenderer) SetSelected(ref ports.ElementRef, selected bool) {
	r.selected[ref] = selected
}

func (r *recordingRenderer) DrawPendingLink(_, _ valueobjects.Position) { r.pending = true }
func (r *recordingRenderer) RemovePendingLink()                         { r.pending = false }

func (r *recordingRenderer) SetViewport(v valueobjects.Viewport) { r.viewport = &v }

type recordingPersistence struct {
	mu       sync.Mutex
	actions  []events.Action
	projects []aggregates.GraphSnapshot
}

func (p *recordingPersistence) SaveAction(_ context.Context, a events.Action) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = append(p.actions, a)
	return nil
}

func (p *recordingPersistence) SaveProject(_ context.Context, snap aggregates.GraphSnapshot, _ bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.projects = append(p.projects, snap)
	return nil
}

// scriptedConfirmer answers per question and counts how often it was asked
type scriptedConfirmer struct {
	answers map[ports.Question]bool
	asked   map[ports.Question]int
}

func confirmAll(answer bool) *scriptedConfirmer {
	return &scriptedConfirmer{
		answers: map[ports.Question]bool{
			ports.QuestionMerge:       answer,
			ports.QuestionMergeDelete: answer,
			ports.QuestionDelete:      answer,
		},
		asked: make(map[ports.Question]int),
	}
}

func (c *scriptedConfirmer) Confirm(q ports.Question, _ string) bool {
	c.asked[q]++
	return c.answers[q]
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(_ ports.NotificationLevel, message string) {
	n.messages = append(n.messages, message)
}

type testEngine struct {
	*Engine
	renderer    *recordingRenderer
	persistence *recordingPersistence
	confirmer   *scriptedConfirmer
	notifier    *recordingNotifier
	palette     ports.MapPalette
}

// createTestEngine builds an engine whose screen maps 1:1 onto graph space
// (viewport 0,0 800x600 on an 800x600 screen) with synchronous saves.
func createTestEngine(t *testing.T, mutate func(*config.InteractionConfig)) *testEngine {
	t.Helper()
	cfg := config.DefaultInteractionConfig()
	if mutate != nil {
		mutate(cfg)
	}
	viewport, err := valueobjects.NewViewport(0, 0, 800, 600)
	require.NoError(t, err)

	te := &testEngine{
		renderer:    newRecordingRenderer(),
		persistence: &recordingPersistence{},
		confirmer:   confirmAll(true),
		notifier:    &recordingNotifier{},
		palette:     ports.MapPalette{},
	}
	te.Engine, err = NewEngine(aggregates.NewGraph("test"), viewport, ScreenSize{Width: 800, Height: 600}, Dependencies{
		Renderer:    te.renderer,
		Persistence: te.persistence,
		Palette:     te.palette,
		Confirmer:   te.confirmer,
		Notifier:    te.notifier,
		Config:      config.NewHolder(cfg),
		LogOptions:  []actionlog.Option{actionlog.WithRunner(actionlog.SyncRunner)},
	})
	require.NoError(t, err)
	return te
}

func (te *testEngine) addNode(t *testing.T, x, y float64, props ...PropertyInput) *entities.Node {
	t.Helper()
	kind := NodeKindEmpty
	if len(props) > 0 {
		kind = NodeKindFull
	}
	node, err := te.CreateNode(NewNode{Kind: kind, TypeID: "concept", Position: pos(t, x, y), Properties: props})
	require.NoError(t, err)
	return node
}

func (te *testEngine) drag(t *testing.T, from, to ScreenPoint, mods Modifiers) {
	t.Helper()
	require.NoError(t, te.PointerDown(PointerEvent{Position: from, Modifiers: mods}))
	te.PointerMove(PointerEvent{Position: to, Modifiers: mods})
	te.PointerUp(PointerEvent{Position: to, Modifiers: mods})
}

func (te *testEngine) actionNames() []events.ActionName {
	var names []events.ActionName
	for _, a := range te.Log().Actions() {
		names = append(names, a.Name)
	}
	return names
}

func (te *testEngine) lastAction(t *testing.T) events.Action {
	t.Helper()
	a, ok := te.Log().Last()
	require.True(t, ok)
	return a
}

func pos(t *testing.T, x, y float64) valueobjects.Position {
	t.Helper()
	p, err := valueobjects.NewPosition(x, y)
	require.NoError(t, err)
	return p
}

func pt(x, y float64) ScreenPoint {
	return ScreenPoint{X: x, Y: y}
}

func mustProperty(t *testing.T, n *entities.Node, name string) string {
	t.Helper()
	prop, ok := n.Property(name)
	require.True(t, ok, "property %q missing", name)
	return prop.Value()
}

func idStrings(ids []valueobjects.NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
