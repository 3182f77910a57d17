package dynamodb

import (
	"fmt"
	"strings"

	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/events"
)

// Sort key layout of one project partition:
//
//	PROJECT#<id>  METADATA                  name, flags, viewport, revision
//	PROJECT#<id>  NODE#<seq>#<uid>          one item per node, seq keeps order
//	PROJECT#<id>  LINK#<seq>#<uid>          one item per link
//	PROJECT#<id>  ACTION#<time>#<action id> one item per logged action
const (
	skMetadata     = "METADATA"
	skNodePrefix   = "NODE#"
	skLinkPrefix   = "LINK#"
	skActionPrefix = "ACTION#"
)

func projectPK(projectID string) string {
	return fmt.Sprintf("PROJECT#%s", projectID)
}

func nodeSK(seq int, id string) string {
	return fmt.Sprintf("%s%06d#%s", skNodePrefix, seq, id)
}

func linkSK(seq int, id string) string {
	return fmt.Sprintf("%s%06d#%s", skLinkPrefix, seq, id)
}

func actionSK(at, id string) string {
	return fmt.Sprintf("%s%s#%s", skActionPrefix, at, id)
}

// keyItem is the key projection used to find stale elements
type keyItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}

// metadataItem represents the project header
type metadataItem struct {
	PK         string                       `dynamodbav:"PK"`
	SK         string                       `dynamodbav:"SK"`
	EntityType string                       `dynamodbav:"EntityType"`
	ProjectID  string                       `dynamodbav:"ProjectID"`
	Name       string                       `dynamodbav:"Name"`
	ReadOnly   bool                         `dynamodbav:"ReadOnly"`
	Viewport   *aggregates.ViewportSnapshot `dynamodbav:"Viewport,omitempty"`
	NodeCount  int                          `dynamodbav:"NodeCount"`
	LinkCount  int                          `dynamodbav:"LinkCount"`
	Revision   uint64                       `dynamodbav:"Revision"`
	UpdatedAt  string                       `dynamodbav:"UpdatedAt"`
}

// nodeItem represents one node of a project
type nodeItem struct {
	PK         string                  `dynamodbav:"PK"`
	SK         string                  `dynamodbav:"SK"`
	EntityType string                  `dynamodbav:"EntityType"`
	Node       aggregates.NodeSnapshot `dynamodbav:"Node"`
}

// linkItem represents one link of a project
type linkItem struct {
	PK         string                  `dynamodbav:"PK"`
	SK         string                  `dynamodbav:"SK"`
	EntityType string                  `dynamodbav:"EntityType"`
	Link       aggregates.LinkSnapshot `dynamodbav:"Link"`
}

// actionItem represents one logged action
type actionItem struct {
	PK         string        `dynamodbav:"PK"`
	SK         string        `dynamodbav:"SK"`
	EntityType string        `dynamodbav:"EntityType"`
	ProjectID  string        `dynamodbav:"ProjectID"`
	RecordedAt string        `dynamodbav:"RecordedAt"`
	Action     events.Action `dynamodbav:"Action"`
}

func isNodeKey(sk string) bool { return strings.HasPrefix(sk, skNodePrefix) }
func isLinkKey(sk string) bool { return strings.HasPrefix(sk, skLinkPrefix) }
