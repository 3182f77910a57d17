// Package eventbridge publishes committed canvas actions to an EventBridge
// bus so other services can follow edits as they happen.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"brain2-canvas/domain/events"
	pkgerrors "brain2-canvas/pkg/errors"
)

// EventBridge limits to 10 events per PutEvents call
const batchSize = 10

// Client is the subset of the EventBridge API used by the publisher
type Client interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher implements ports.ActionSink on top of EventBridge
type Publisher struct {
	client       Client
	eventBusName string
	source       string
	projectID    string
	logger       *zap.Logger
}

// actionDetail is the event payload
type actionDetail struct {
	ProjectID string        `json:"projectId"`
	Action    events.Action `json:"action"`
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client Client, eventBusName, source, projectID string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		source:       source,
		projectID:    projectID,
		logger:       logger,
	}
}

// SaveAction publishes a single action
func (p *Publisher) SaveAction(ctx context.Context, action events.Action) error {
	return p.PublishBatch(ctx, []events.Action{action})
}

// PublishBatch publishes actions in order, in calls of at most ten entries
func (p *Publisher) PublishBatch(ctx context.Context, actions []events.Action) error {
	for i := 0; i < len(actions); i += batchSize {
		end := i + batchSize
		if end > len(actions) {
			end = len(actions)
		}
		if err := p.publishBatch(ctx, actions[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publishBatch(ctx context.Context, actions []events.Action) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(actions))
	for _, action := range actions {
		detail, err := json.Marshal(actionDetail{ProjectID: p.projectID, Action: action})
		if err != nil {
			return pkgerrors.NewPersistenceError("publishAction", err).WithDetail("actionID", action.ID)
		}

		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(p.source),
			DetailType:   aws.String(string(action.Name)),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(action.Time),
			Resources:    []string{fmt.Sprintf("arn:aws:brain2::project/%s", p.projectID)},
		})
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return pkgerrors.NewPersistenceError("publishAction", err)
	}

	if result.FailedEntryCount > 0 {
		for i, entry := range result.Entries {
			if entry.ErrorCode != nil && i < len(actions) {
				p.logger.Error("Failed to publish action",
					zap.String("action", string(actions[i].Name)),
					zap.String("actionID", actions[i].ID),
					zap.String("errorCode", aws.ToString(entry.ErrorCode)),
					zap.String("errorMessage", aws.ToString(entry.ErrorMessage)))
			}
		}
		return pkgerrors.NewPersistenceError("publishAction",
			fmt.Errorf("%d actions failed to publish", result.FailedEntryCount)).
			WithDetail("failed", int(result.FailedEntryCount))
	}

	p.logger.Debug("Actions published to EventBridge",
		zap.Int("count", len(entries)),
		zap.String("eventBus", p.eventBusName))
	return nil
}
