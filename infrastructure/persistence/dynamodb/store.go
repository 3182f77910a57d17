package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/events"
	pkgerrors "brain2-canvas/pkg/errors"
	"brain2-canvas/pkg/utils"
)

// DynamoDB limit is 25 items per batch
const batchSize = 25

// maxUnprocessedRetries bounds the resubmission of throttled batch items
const maxUnprocessedRetries = 3

// Client is the subset of the DynamoDB API used by the store
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store persists canvas projects and their action logs in a single DynamoDB
// table. Each project is one partition.
type Store struct {
	client    Client
	tableName string
	projectID string
	logger    *zap.Logger
	now       func() time.Time
}

// NewStore creates a store writing actions under projectID
func NewStore(client Client, tableName, projectID string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client:    client,
		tableName: tableName,
		projectID: projectID,
		logger:    logger,
		now:       time.Now,
	}
}

// SaveAction appends one action to the project partition
func (s *Store) SaveAction(ctx context.Context, action events.Action) error {
	recorded := utils.FormatRFC3339(action.Time)
	item, err := attributevalue.MarshalMap(actionItem{
		PK:         projectPK(s.projectID),
		SK:         actionSK(utils.FormatSortable(action.Time), action.ID),
		EntityType: "ACTION",
		ProjectID:  s.projectID,
		RecordedAt: recorded,
		Action:     action,
	})
	if err != nil {
		return pkgerrors.NewPersistenceError("saveAction", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return classify("saveAction", err)
	}
	return nil
}

// SaveProject writes a full snapshot: the header first, guarded on the
// snapshot revision so an older save finishing late cannot overwrite a newer
// one, then every element, then deletes elements no longer present.
func (s *Store) SaveProject(ctx context.Context, project aggregates.GraphSnapshot, quiet bool) error {
	projectID := project.ID
	if projectID == "" {
		projectID = s.projectID
	}
	pk := projectPK(projectID)
	now := s.now()

	if err := s.putMetadata(ctx, pk, projectID, project, now); err != nil {
		return err
	}

	existing, err := s.elementKeys(ctx, pk)
	if err != nil {
		return err
	}

	writes := make([]types.WriteRequest, 0, len(project.Nodes)+len(project.Links))
	current := make(map[string]bool, cap(writes))
	for i, n := range project.Nodes {
		sk := nodeSK(i, n.ID)
		current[sk] = true
		item, err := attributevalue.MarshalMap(nodeItem{PK: pk, SK: sk, EntityType: "NODE", Node: n})
		if err != nil {
			return pkgerrors.NewPersistenceError("saveProject", err)
		}
		writes = append(writes, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}
	for i, l := range project.Links {
		sk := linkSK(i, l.ID)
		current[sk] = true
		item, err := attributevalue.MarshalMap(linkItem{PK: pk, SK: sk, EntityType: "LINK", Link: l})
		if err != nil {
			return pkgerrors.NewPersistenceError("saveProject", err)
		}
		writes = append(writes, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}
	stale := 0
	for _, sk := range existing {
		if current[sk] {
			continue
		}
		stale++
		writes = append(writes, types.WriteRequest{DeleteRequest: &types.DeleteRequest{
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: pk},
				"SK": &types.AttributeValueMemberS{Value: sk},
			},
		}})
	}

	if err := s.batchWrite(ctx, writes); err != nil {
		return err
	}

	level := s.logger.Info
	if quiet {
		level = s.logger.Debug
	}
	level("Saved project to DynamoDB",
		zap.String("projectID", projectID),
		zap.Int("nodeCount", len(project.Nodes)),
		zap.Int("linkCount", len(project.Links)),
		zap.Int("staleRemoved", stale),
	)
	return nil
}

// LoadProject reads a project back in saved order
func (s *Store) LoadProject(ctx context.Context, projectID string) (aggregates.GraphSnapshot, error) {
	var snap aggregates.GraphSnapshot
	found := false

	err := s.query(ctx, projectPK(projectID), nil, func(item map[string]types.AttributeValue) error {
		sk, _ := item["SK"].(*types.AttributeValueMemberS)
		if sk == nil {
			return nil
		}
		switch {
		case sk.Value == skMetadata:
			var meta metadataItem
			if err := attributevalue.UnmarshalMap(item, &meta); err != nil {
				return err
			}
			found = true
			snap.ID = meta.ProjectID
			snap.Name = meta.Name
			snap.ReadOnly = meta.ReadOnly
			snap.Revision = meta.Revision
			snap.Viewport = meta.Viewport
		case isNodeKey(sk.Value):
			var n nodeItem
			if err := attributevalue.UnmarshalMap(item, &n); err != nil {
				return err
			}
			snap.Nodes = append(snap.Nodes, n.Node)
		case isLinkKey(sk.Value):
			var l linkItem
			if err := attributevalue.UnmarshalMap(item, &l); err != nil {
				return err
			}
			snap.Links = append(snap.Links, l.Link)
		}
		return nil
	})
	if err != nil {
		return aggregates.GraphSnapshot{}, err
	}
	if !found {
		return aggregates.GraphSnapshot{}, pkgerrors.NewNotFoundError("project " + projectID)
	}
	return snap, nil
}

// ListActions returns the stored actions of a project, oldest first
func (s *Store) ListActions(ctx context.Context, projectID string) ([]events.Action, error) {
	var actions []events.Action
	prefix := skActionPrefix
	err := s.query(ctx, projectPK(projectID), &prefix, func(item map[string]types.AttributeValue) error {
		var a actionItem
		if err := attributevalue.UnmarshalMap(item, &a); err != nil {
			return err
		}
		actions = append(actions, a.Action)
		return nil
	})
	return actions, err
}

func (s *Store) putMetadata(ctx context.Context, pk, projectID string, project aggregates.GraphSnapshot, now time.Time) error {
	item, err := attributevalue.MarshalMap(metadataItem{
		PK:         pk,
		SK:         skMetadata,
		EntityType: "PROJECT",
		ProjectID:  projectID,
		Name:       project.Name,
		ReadOnly:   project.ReadOnly,
		Viewport:   project.Viewport,
		NodeCount:  len(project.Nodes),
		LinkCount:  len(project.Links),
		Revision:   project.Revision,
		UpdatedAt:  utils.FormatRFC3339(now),
	})
	if err != nil {
		return pkgerrors.NewPersistenceError("saveProject", err)
	}

	// Equal revisions hold the same changes, so re-saving one is allowed
	condition := expression.Name("PK").AttributeNotExists().
		Or(expression.Name("Revision").LessThanEqual(expression.Value(project.Revision)))
	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return pkgerrors.NewPersistenceError("saveProject", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return classify("saveProject", err)
	}
	return nil
}

// elementKeys lists the sort keys of every stored node and link
func (s *Store) elementKeys(ctx context.Context, pk string) ([]string, error) {
	var keys []string
	for _, prefix := range []string{skNodePrefix, skLinkPrefix} {
		prefix := prefix
		err := s.query(ctx, pk, &prefix, func(item map[string]types.AttributeValue) error {
			var k keyItem
			if err := attributevalue.UnmarshalMap(item, &k); err != nil {
				return err
			}
			keys = append(keys, k.SK)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// query pages through one partition, optionally restricted to a sort key prefix
func (s *Store) query(ctx context.Context, pk string, skPrefix *string, fn func(map[string]types.AttributeValue) error) error {
	keyCond := expression.Key("PK").Equal(expression.Value(pk))
	if skPrefix != nil {
		keyCond = keyCond.And(expression.Key("SK").BeginsWith(*skPrefix))
	}
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return pkgerrors.NewPersistenceError("query", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	}

	for {
		result, err := s.client.Query(ctx, input)
		if err != nil {
			return classify("query", err)
		}
		for _, item := range result.Items {
			if err := fn(item); err != nil {
				return pkgerrors.NewPersistenceError("query", err)
			}
		}
		if len(result.LastEvaluatedKey) == 0 {
			return nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

func (s *Store) batchWrite(ctx context.Context, writes []types.WriteRequest) error {
	for i := 0; i < len(writes); i += batchSize {
		end := i + batchSize
		if end > len(writes) {
			end = len(writes)
		}

		pending := map[string][]types.WriteRequest{s.tableName: writes[i:end]}
		for attempt := 0; len(pending[s.tableName]) > 0; attempt++ {
			if attempt > maxUnprocessedRetries {
				return pkgerrors.NewPersistenceError("saveProject",
					errors.New("unprocessed items after retries")).
					WithDetail("unprocessed", len(pending[s.tableName])).
					WithDetail("retryable", true)
			}
			if attempt > 0 {
				s.logger.Warn("Retrying unprocessed items",
					zap.Int("attempt", attempt),
					zap.Int("count", len(pending[s.tableName])))
				if err := sleep(ctx, time.Duration(attempt)*50*time.Millisecond); err != nil {
					return pkgerrors.NewPersistenceError("saveProject", err)
				}
			}

			result, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return classify("saveProject", err)
			}
			pending = result.UnprocessedItems
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// classify converts DynamoDB API errors into persistence errors carrying the
// service error code and whether a retry may succeed. A failed revision
// condition means a newer save already landed and is reported as a conflict.
func classify(operation string, err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return pkgerrors.NewConflictError("a newer save of this project already exists").
			WithCause(err).
			WithDetail("operation", operation)
	}

	appErr := pkgerrors.NewPersistenceError(operation, err)
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return appErr.WithDetail("retryable", false)
	}

	retryable := false
	switch ae.ErrorCode() {
	case "ProvisionedThroughputExceededException", "RequestLimitExceeded",
		"ThrottlingException", "InternalServerError", "ServiceUnavailable":
		retryable = true
	}
	return appErr.WithCode(ae.ErrorCode()).WithDetail("retryable", retryable)
}
