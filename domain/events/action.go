package events

import (
	"time"

	"brain2-canvas/domain/core/valueobjects"
)

// ActionName identifies the kind of a committed change
type ActionName string

const (
	ActionCreateNode ActionName = "createNode"
	ActionUpdateNode ActionName = "updateNode"
	ActionDeleteNode ActionName = "deleteNode"
	ActionCreateLink ActionName = "createLink"
	ActionUpdateLink ActionName = "updateLink"
	ActionDeleteLink ActionName = "deleteLink"
	ActionMove       ActionName = "move"
	ActionPan        ActionName = "pan"
	ActionZoom       ActionName = "zoom"
	ActionSelect     ActionName = "select"
)

// IsViewChange reports whether consecutive actions of this kind merge
func (n ActionName) IsViewChange() bool {
	return n == ActionPan || n == ActionZoom
}

// Action is an immutable record of one committed change
type Action struct {
	ID        string                 `json:"id" dynamodbav:"ActionID"`
	Time      time.Time              `json:"time" dynamodbav:"Time"`
	Name      ActionName             `json:"name" dynamodbav:"Name"`
	NodeRefs  []string               `json:"nodeRefs,omitempty" dynamodbav:"NodeRefs,omitempty"`
	LinkRefs  []string               `json:"linkRefs,omitempty" dynamodbav:"LinkRefs,omitempty"`
	ExtraInfo map[string]interface{} `json:"extraInfo,omitempty" dynamodbav:"ExtraInfo,omitempty"`
}

// NewAction creates an action stamped with the given time
func NewAction(id string, at time.Time, name ActionName, nodes []valueobjects.NodeID, extra map[string]interface{}) Action {
	refs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		refs = append(refs, n.String())
	}
	return Action{
		ID:        id,
		Time:      at,
		Name:      name,
		NodeRefs:  refs,
		ExtraInfo: extra,
	}
}

// WithLinks returns a copy referencing the given links
func (a Action) WithLinks(links ...valueobjects.LinkID) Action {
	refs := make([]string, 0, len(a.LinkRefs)+len(links))
	refs = append(refs, a.LinkRefs...)
	for _, l := range links {
		refs = append(refs, l.String())
	}
	a.LinkRefs = refs
	return a
}

// WithExtra returns a copy with one more extraInfo entry
func (a Action) WithExtra(key string, value interface{}) Action {
	extra := make(map[string]interface{}, len(a.ExtraInfo)+1)
	for k, v := range a.ExtraInfo {
		extra[k] = v
	}
	extra[key] = value
	a.ExtraInfo = extra
	return a
}
