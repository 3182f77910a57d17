package interaction

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Key names understood by KeyDown
const (
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyPlus       = "+"
	KeyEquals     = "="
	KeyMinus      = "-"
	KeyDelete     = "Delete"
	KeyBackspace  = "Backspace"
	KeyEscape     = "Escape"
)

var arrowDirections = map[string][2]float64{
	KeyArrowLeft:  {-1, 0},
	KeyArrowRight: {1, 0},
	KeyArrowUp:    {0, -1},
	KeyArrowDown:  {0, 1},
}

// KeyDown handles one key press. Keys are ignored while a gesture is in
// flight. Errors are read-only violations and explicit save failures.
func (e *Engine) KeyDown(ctx context.Context, ev KeyEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctx.active != GestureNone {
		e.logger.Debug("key ignored during gesture", zap.String("key", ev.Key))
		return nil
	}

	if dir, ok := arrowDirections[ev.Key]; ok {
		if e.ctx.Selection.NodeCount() > 0 {
			if err := e.requireWritable("nudge"); err != nil {
				return err
			}
			e.nudge(dir[0], dir[1])
			return nil
		}
		e.pan(dir[0], dir[1], TriggerDiscrete)
		return nil
	}

	command := ev.Modifiers.Ctrl || ev.Modifiers.Meta
	switch key := strings.ToLower(ev.Key); {
	case key == KeyPlus || key == KeyEquals:
		e.zoom(ZoomIn, TriggerDiscrete)
	case key == KeyMinus:
		e.zoom(ZoomOut, TriggerDiscrete)
	case key == strings.ToLower(KeyDelete) || key == strings.ToLower(KeyBackspace):
		_, err := e.deleteSelection()
		return err
	case key == strings.ToLower(KeyEscape):
		e.paintSelection(e.ctx.Selection.Clear())
	case key == "a" && command:
		e.selectAll()
	case key == "s" && command:
		return e.log.Save(ctx)
	case key == "f":
		nodes := e.ctx.Selection.Nodes()
		if len(nodes) == 0 {
			nodes = e.visibleNodes()
		}
		if len(nodes) > 0 {
			return e.zoomToFill(nodes)
		}
	}
	return nil
}

// selectAll selects every visible node and link
func (e *Engine) selectAll() {
	for _, n := range e.ctx.Graph.ListNodes() {
		e.setNodeSelected(n, !n.IsHidden())
	}
	for _, l := range e.ctx.Graph.ListLinks() {
		e.setLinkSelected(l, !l.IsHidden())
	}
}

// SelectAll selects every visible node and link
func (e *Engine) SelectAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectAll()
}

// ClearSelection deselects everything
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paintSelection(e.ctx.Selection.Clear())
}
