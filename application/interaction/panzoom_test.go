package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brain2-canvas/application/ports"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/domain/events"
)

func assertViewport(t *testing.T, v valueobjects.Viewport, left, top, width, height float64) {
	t.Helper()
	assert.InDelta(t, left, v.Left(), 1e-9, "left")
	assert.InDelta(t, top, v.Top(), 1e-9, "top")
	assert.InDelta(t, width, v.Width(), 1e-9, "width")
	assert.InDelta(t, height, v.Height(), 1e-9, "height")
}

func TestZoom_KeepsPointAnchored(t *testing.T) {
	tests := []struct {
		name   string
		point  ScreenPoint
		deltaY float64
	}{
		{name: "in at quarter", point: pt(200, 150), deltaY: -1},
		{name: "out at quarter", point: pt(200, 150), deltaY: 1},
		{name: "in at corner", point: pt(0, 0), deltaY: -3},
		{name: "out at far corner", point: pt(800, 600), deltaY: 5},
		{name: "in off centre", point: pt(613, 47), deltaY: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := createTestEngine(t, nil)
			te.PointerMove(PointerEvent{Position: tt.point})
			before, err := te.Context().ToGraph(tt.point)
			require.NoError(t, err)
			oldWidth := te.Viewport().Width()

			te.Wheel(WheelEvent{Position: tt.point, DeltaY: tt.deltaY})

			after, err := te.Context().ToGraph(tt.point)
			require.NoError(t, err)
			assert.InDelta(t, before.X(), after.X(), 1e-9)
			assert.InDelta(t, before.Y(), after.Y(), 1e-9)
			if tt.deltaY < 0 {
				assert.Less(t, te.Viewport().Width(), oldWidth)
			} else {
				assert.Greater(t, te.Viewport().Width(), oldWidth)
			}
		})
	}
}

func TestZoom_SkippedWithoutPointer(t *testing.T) {
	te := createTestEngine(t, nil)
	before := te.Log().Len()

	assert.False(t, te.Zoom(ZoomIn, TriggerDiscrete))
	assertViewport(t, te.Viewport(), 0, 0, 800, 600)
	assert.Equal(t, before, te.Log().Len())

	te.PointerMove(PointerEvent{Position: pt(400, 300)})
	assert.True(t, te.Zoom(ZoomIn, TriggerDiscrete))
	assertViewport(t, te.Viewport(), 80, 60, 640, 480)
}

func TestPan_DiscreteAndContinuousFactors(t *testing.T) {
	te := createTestEngine(t, nil)

	te.Pan(1, 0, TriggerDiscrete)
	assertViewport(t, te.Viewport(), 80, 0, 800, 600)

	te.Pan(0, -1, TriggerContinuous)
	assertViewport(t, te.Viewport(), 80, -12, 800, 600)
	assert.NotNil(t, te.renderer.viewport)
}

func TestPan_WheelWithPanModifier(t *testing.T) {
	te := createTestEngine(t, nil)

	te.Wheel(WheelEvent{Position: pt(10, 10), DeltaX: 4, DeltaY: -2, Modifiers: Modifiers{Ctrl: true}})

	assertViewport(t, te.Viewport(), 16, -12, 800, 600)
}

func TestPan_DragFollowsPointer(t *testing.T) {
	te := createTestEngine(t, nil)
	ctrl := Modifiers{Ctrl: true}
	grabbed, err := te.Context().ToGraph(pt(400, 300))
	require.NoError(t, err)

	require.NoError(t, te.PointerDown(PointerEvent{Position: pt(400, 300), Modifiers: ctrl}))
	assert.Equal(t, GesturePan, te.ActiveGesture())
	te.PointerMove(PointerEvent{Position: pt(390, 310), Modifiers: ctrl})
	te.PointerMove(PointerEvent{Position: pt(380, 300), Modifiers: ctrl})
	te.PointerUp(PointerEvent{Position: pt(380, 300), Modifiers: ctrl})

	assertViewport(t, te.Viewport(), 20, 0, 800, 600)
	under, err := te.Context().ToGraph(pt(380, 300))
	require.NoError(t, err)
	assert.InDelta(t, grabbed.X(), under.X(), 1e-9)

	pans := 0
	for _, a := range te.Log().Actions() {
		if a.Name == events.ActionPan {
			pans++
		}
	}
	assert.Equal(t, 1, pans, "consecutive pans collapse into one action")
}

func TestPanZoom_RunsCollapse(t *testing.T) {
	te := createTestEngine(t, nil)
	te.PointerMove(PointerEvent{Position: pt(400, 300)})
	before := te.Log().Len()

	te.Pan(1, 0, TriggerDiscrete)
	te.Pan(1, 0, TriggerDiscrete)
	te.Pan(0, 1, TriggerDiscrete)
	te.Zoom(ZoomIn, TriggerDiscrete)

	actions := te.Log().Actions()[before:]
	require.Len(t, actions, 2)
	assert.Equal(t, events.ActionPan, actions[0].Name)
	assert.EqualValues(t, 3, actions[0].ExtraInfo["count"])
	assert.Equal(t, events.ActionZoom, actions[1].Name)
}

func TestZoomToFill(t *testing.T) {
	te := createTestEngine(t, nil)
	a := te.addNode(t, 0, 0)
	b := te.addNode(t, 100, 0)

	require.NoError(t, te.ZoomToFill(a.ID(), b.ID()))

	// centres span 100x0, padded by 2*20 on each side: 180x80, so the
	// width decides the scale
	assertViewport(t, te.Viewport(), -40, -67.5, 180, 135)
	assert.Equal(t, events.ActionZoom, te.lastAction(t).Name)
}

func TestZoomToFill_UsesPaletteRadius(t *testing.T) {
	te := createTestEngine(t, nil)
	a := te.addNode(t, 0, 0)
	te.palette["concept"] = ports.TypeDescriptor{ID: "concept", Name: "Concept", Radius: 50}

	require.NoError(t, te.ZoomToFill(a.ID()))

	// a single node is padded by 100 on every side; the height decides
	assertViewport(t, te.Viewport(), -400.0/3, -100, 800.0/3, 200)
}

func TestZoomToFill_NoVisibleNodes(t *testing.T) {
	te := createTestEngine(t, nil)
	assert.Error(t, te.ZoomToFill())
}
