package interaction

import (
	"fmt"

	"go.uber.org/zap"

	"brain2-canvas/application/ports"
	"brain2-canvas/domain/core/entities"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/domain/events"
	pkgerrors "brain2-canvas/pkg/errors"
)

// NodeKind selects the variant created by CreateNode
type NodeKind string

const (
	NodeKindEmpty   NodeKind = "empty"
	NodeKindFull    NodeKind = "full"
	NodeKindSpecial NodeKind = "special"
)

// PropertyInput is one property supplied by an editor or a script
type PropertyInput struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	Kind  string `yaml:"kind" json:"kind" validate:"required"`
	Value string `yaml:"value" json:"value"`
}

// NewNode describes a node to create
type NewNode struct {
	Kind       NodeKind
	TypeID     string
	Position   valueobjects.Position
	Properties []PropertyInput
}

// LinkUpdate carries the link fields to change; nil fields are kept
type LinkUpdate struct {
	Label         *string
	Bidirectional *bool
	AnchorPos     *float64
	Bender        *float64
}

// CreateNode adds a node and logs a createNode action
func (e *Engine) CreateNode(req NewNode) (*entities.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireWritable("create node"); err != nil {
		return nil, err
	}

	node, err := buildNode(req)
	if err != nil {
		return nil, err
	}
	if err := e.ctx.Graph.AddNode(node); err != nil {
		return nil, err
	}
	e.renderer.DrawNode(node.Variant())
	e.log.Record(events.ActionCreateNode, []valueobjects.NodeID{node.ID()}, map[string]interface{}{
		"type": node.TypeID(),
		"mode": string(node.Mode()),
	})
	return node, nil
}

func buildNode(req NewNode) (*entities.Node, error) {
	switch req.Kind {
	case NodeKindEmpty, "":
		if len(req.Properties) > 0 {
			return nil, pkgerrors.NewValidationError("empty node cannot carry properties")
		}
		return entities.NewEmptyNode(req.TypeID, req.Position)
	case NodeKindSpecial:
		node, err := entities.NewSpecialNode(req.TypeID, req.Position)
		if err != nil {
			return nil, err
		}
		for _, p := range req.Properties {
			kind, err := valueobjects.ParsePropertyKind(p.Kind)
			if err != nil {
				return nil, pkgerrors.NewUnknownPropertyKindError(p.Name, p.Kind)
			}
			if err := node.SetProperty(p.Name, kind, p.Value); err != nil {
				return nil, err
			}
		}
		return node, nil
	case NodeKindFull:
		props := valueobjects.NewProperties()
		for _, p := range req.Properties {
			kind, err := valueobjects.ParsePropertyKind(p.Kind)
			if err != nil {
				return nil, pkgerrors.NewUnknownPropertyKindError(p.Name, p.Kind)
			}
			prop, err := valueobjects.NewProperty(p.Name, kind, p.Value)
			if err != nil {
				return nil, err
			}
			props.Set(p.Name, prop)
		}
		return entities.NewFullNode(req.TypeID, req.Position, props)
	default:
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("unknown node kind %q", req.Kind))
	}
}

// SetNodeProperty sets one typed property and logs an updateNode action
func (e *Engine) SetNodeProperty(id valueobjects.NodeID, name string, kind valueobjects.PropertyKind, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireWritable("edit node"); err != nil {
		return err
	}
	if err := e.ctx.Graph.SetNodeProperty(id, name, kind, value); err != nil {
		return err
	}
	e.afterNodeEdit(id, map[string]interface{}{"property": name, "kind": string(kind)})
	return nil
}

// RemoveNodeProperty removes one property and logs an updateNode action
func (e *Engine) RemoveNodeProperty(id valueobjects.NodeID, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireWritable("edit node"); err != nil {
		return err
	}
	if err := e.ctx.Graph.RemoveNodeProperty(id, name); err != nil {
		return err
	}
	e.afterNodeEdit(id, map[string]interface{}{"removed": name})
	return nil
}

func (e *Engine) afterNodeEdit(id valueobjects.NodeID, extra map[string]interface{}) {
	node, err := e.ctx.Graph.GetNodeByID(id)
	if err != nil {
		return
	}
	e.renderer.DrawNode(node.Variant())
	e.log.Record(events.ActionUpdateNode, []valueobjects.NodeID{id}, extra)
}

// MoveNode places a node programmatically and logs a move action
func (e *Engine) MoveNode(id valueobjects.NodeID, pos valueobjects.Position) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireWritable("move node"); err != nil {
		return err
	}
	node, err := e.ctx.Graph.GetNodeByID(id)
	if err != nil {
		return err
	}
	dx, dy := pos.Delta(node.Position())
	e.moveNode(node, pos)
	e.recordMove([]valueobjects.NodeID{id}, dx, dy)
	return nil
}

// CreateLink links two nodes programmatically and logs a createLink action
func (e *Engine) CreateLink(source, target valueobjects.NodeID) (*entities.Link, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireWritable("create link"); err != nil {
		return nil, err
	}
	link, err := e.ctx.Graph.AddLink(source, target)
	if err != nil {
		return nil, err
	}
	if geo, err := e.ctx.Graph.LinkGeometry(link); err == nil {
		e.renderer.DrawLink(geo)
	}
	e.log.Record(events.ActionCreateLink, []valueobjects.NodeID{source, target}, nil, link.ID())
	return link, nil
}

// UpdateLink changes link attributes and logs an updateLink action
func (e *Engine) UpdateLink(id valueobjects.LinkID, update LinkUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireWritable("edit link"); err != nil {
		return err
	}
	link, err := e.ctx.Graph.GetLink(id)
	if err != nil {
		return err
	}

	extra := map[string]interface{}{}
	if update.AnchorPos != nil {
		if err := link.SetAnchorPos(*update.AnchorPos); err != nil {
			return err
		}
		extra["anchorPos"] = *update.AnchorPos
	}
	if update.Bender != nil {
		if err := link.SetBender(*update.Bender); err != nil {
			return err
		}
		extra["bender"] = *update.Bender
	}
	if update.Label != nil {
		link.SetLabel(*update.Label)
		extra["label"] = *update.Label
	}
	if update.Bidirectional != nil {
		link.SetBidirectional(*update.Bidirectional)
		extra["bidirectional"] = *update.Bidirectional
	}
	if len(extra) == 0 {
		return nil
	}

	e.redrawLink(link)
	e.log.Record(events.ActionUpdateLink, []valueobjects.NodeID{link.Source(), link.Target()}, extra, link.ID())
	return nil
}

// DeleteLink removes one link and logs a deleteLink action
func (e *Engine) DeleteLink(id valueobjects.LinkID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireWritable("delete link"); err != nil {
		return err
	}
	link, err := e.ctx.Graph.DeleteLink(id)
	if err != nil {
		return err
	}
	e.forgetLink(link)
	return nil
}

// DeleteNode removes a node with its links, one action per removed element
func (e *Engine) DeleteNode(id valueobjects.NodeID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireWritable("delete node"); err != nil {
		return err
	}
	node, err := e.ctx.Graph.GetNodeByID(id)
	if err != nil {
		return err
	}
	return e.deleteNode(node)
}

// DeleteSelection asks for confirmation and deletes every selected link and
// node. It returns the number of removed elements.
func (e *Engine) DeleteSelection() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deleteSelection()
}

func (e *Engine) deleteSelection() (int, error) {
	if err := e.requireWritable("delete selection"); err != nil {
		return 0, err
	}
	sel := e.ctx.Selection
	if sel.IsEmpty() {
		return 0, nil
	}

	question := fmt.Sprintf("Delete %d nodes and %d links?", sel.NodeCount(), sel.LinkCount())
	if !e.confirmer.Confirm(ports.QuestionDelete, question) {
		return 0, nil
	}

	removed := 0
	for _, link := range sel.Links() {
		if _, err := e.ctx.Graph.DeleteLink(link.ID()); err != nil {
			e.logger.Warn("could not delete link", zap.String("link", link.ID().String()), zap.Error(err))
			continue
		}
		e.forgetLink(link)
		removed++
	}
	for _, node := range sel.Nodes() {
		links := node.Degree()
		if err := e.deleteNode(node); err != nil {
			e.logger.Warn("could not delete node", zap.String("node", node.ID().String()), zap.Error(err))
			continue
		}
		removed += links + 1
	}
	return removed, nil
}

// deleteNode detaches and deletes the links of a node, then the node itself
func (e *Engine) deleteNode(node *entities.Node) error {
	links, err := e.ctx.Graph.DeleteNode(node.ID(), true)
	for _, link := range links {
		e.forgetLink(link)
	}
	if err != nil {
		return err
	}
	e.ctx.Selection.Forget([]valueobjects.NodeID{node.ID()}, nil)
	e.renderer.Remove(ports.NodeRef(node.ID()))
	e.log.Record(events.ActionDeleteNode, []valueobjects.NodeID{node.ID()}, map[string]interface{}{
		"type": node.TypeID(),
	})
	return nil
}

// forgetLink clears a link that has already left the graph from the
// selection and the screen, and logs its deletion
func (e *Engine) forgetLink(link *entities.Link) {
	e.ctx.Selection.Forget(nil, []valueobjects.LinkID{link.ID()})
	e.renderer.Remove(ports.LinkRef(link.ID()))
	e.log.Record(events.ActionDeleteLink, []valueobjects.NodeID{link.Source(), link.Target()}, nil, link.ID())
}

// SetReadOnly toggles whether the canvas accepts mutations
func (e *Engine) SetReadOnly(readOnly bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctx.Graph.SetReadOnly(readOnly)
}
