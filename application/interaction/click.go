package interaction

import (
	"go.uber.org/zap"

	"brain2-canvas/domain/core/valueobjects"
)

// click handles a press and release on a node without movement. A plain
// click selects only that node; with the additive modifier it toggles the
// node in the current selection.
func (e *Engine) click(id valueobjects.NodeID, mods Modifiers) {
	node, err := e.ctx.Graph.GetNodeByID(id)
	if err != nil {
		e.logger.Debug("click on missing node", zap.String("node", id.String()))
		return
	}

	if mods.Has(e.cfg().AdditiveModifier) {
		e.setNodeSelected(node, !node.IsSelected())
		return
	}

	e.paintSelection(e.ctx.Selection.Clear())
	e.setNodeSelected(node, true)
}

// Click selects a node as if it had been clicked
func (e *Engine) Click(id valueobjects.NodeID, mods Modifiers) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.click(id, mods)
}
