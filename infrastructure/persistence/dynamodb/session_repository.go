package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"goodnight/application/ports"
	"goodnight/domain/entities"
)

const (
	metaPK = "META"
	metaSK = "SESSIONS"
)

// SessionRepository implements ports.SessionRepository on DynamoDB.
//
// Layout: sessions live under PK=SESSION#<id>, with GSI1 keyed by owner for
// per-user queries. The one-active-session rule is an ACTIVE marker item
// per user written with a conditional put inside the same transaction as
// the session; losing that condition is the store-level rejection the
// lifecycle maps to Conflict. A single META item carries the global
// latest-mutation timestamp and is bumped in every write transaction.
type SessionRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewSessionRepository creates a DynamoDB session repository
func NewSessionRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// sessionItem is the DynamoDB item structure for a sleep session
type sessionItem struct {
	PK              string `dynamodbav:"PK"`
	SK              string `dynamodbav:"SK"`
	GSI1PK          string `dynamodbav:"GSI1PK"`
	GSI1SK          string `dynamodbav:"GSI1SK"`
	EntityType      string `dynamodbav:"EntityType"`
	SessionID       string `dynamodbav:"SessionID"`
	UserID          string `dynamodbav:"UserID"`
	ClockInTime     string `dynamodbav:"ClockInTime"`
	ClockOutTime    string `dynamodbav:"ClockOutTime,omitempty"`
	DurationMinutes *int   `dynamodbav:"DurationMinutes,omitempty"`
	CreatedAt       string `dynamodbav:"CreatedAt"`
	UpdatedAt       string `dynamodbav:"UpdatedAt"`
}

func sessionPK(id string) string        { return fmt.Sprintf("SESSION#%s", id) }
func activePK(userID string) string     { return fmt.Sprintf("USERACTIVE#%s", userID) }
func sessionGSIPK(userID string) string { return fmt.Sprintf("USER#%s", userID) }

func toSessionItem(s *entities.SleepSession) sessionItem {
	item := sessionItem{
		PK:          sessionPK(s.ID),
		SK:          "METADATA",
		GSI1PK:      sessionGSIPK(s.UserID),
		GSI1SK:      fmt.Sprintf("SESSION#%s", s.ID),
		EntityType:  "SESSION",
		SessionID:   s.ID,
		UserID:      s.UserID,
		ClockInTime: s.ClockInTime.Format(time.RFC3339Nano),
		CreatedAt:   s.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   s.UpdatedAt.Format(time.RFC3339Nano),
	}
	if s.ClockOutTime != nil {
		item.ClockOutTime = s.ClockOutTime.Format(time.RFC3339Nano)
	}
	item.DurationMinutes = s.DurationMinutes
	return item
}

func fromSessionItem(item sessionItem) (*entities.SleepSession, error) {
	clockIn, err := time.Parse(time.RFC3339Nano, item.ClockInTime)
	if err != nil {
		return nil, fmt.Errorf("bad ClockInTime on %s: %w", item.SessionID, err)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)

	session := &entities.SleepSession{
		ID:              item.SessionID,
		UserID:          item.UserID,
		ClockInTime:     clockIn,
		DurationMinutes: item.DurationMinutes,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
	if item.ClockOutTime != "" {
		clockOut, err := time.Parse(time.RFC3339Nano, item.ClockOutTime)
		if err != nil {
			return nil, fmt.Errorf("bad ClockOutTime on %s: %w", item.SessionID, err)
		}
		session.ClockOutTime = &clockOut
	}
	return session, nil
}

// CreateActive implements ports.SessionRepository
func (r *SessionRepository) CreateActive(ctx context.Context, session *entities.SleepSession) error {
	item, err := attributevalue.MarshalMap(toSessionItem(session))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	marker, err := attributevalue.MarshalMap(map[string]string{
		"PK":        activePK(session.UserID),
		"SK":        "ACTIVE",
		"SessionID": session.ID,
		"UserID":    session.UserID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal active marker: %w", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(r.tableName),
					Item:                marker,
					ConditionExpression: aws.String("attribute_not_exists(PK)"),
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(r.tableName),
					Item:      item,
				},
			},
			r.bumpMetaItem(session.UpdatedAt),
		},
	})
	if err != nil {
		if isConditionalCancellation(err) {
			return ports.ErrActiveSessionExists
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID implements ports.SessionRepository
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*entities.SleepSession, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: sessionPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if out.Item == nil {
		return nil, ports.ErrSessionNotFound
	}

	var item sessionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return fromSessionItem(item)
}

// SaveCompleted implements ports.SessionRepository
func (r *SessionRepository) SaveCompleted(ctx context.Context, session *entities.SleepSession) error {
	item, err := attributevalue.MarshalMap(toSessionItem(session))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName: aws.String(r.tableName),
					Item:      item,
				},
			},
			{
				Delete: &types.Delete{
					TableName: aws.String(r.tableName),
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: activePK(session.UserID)},
						"SK": &types.AttributeValueMemberS{Value: "ACTIVE"},
					},
				},
			},
			r.bumpMetaItem(session.UpdatedAt),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete implements ports.SessionRepository
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	session, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{
		{
			Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: sessionPK(id)},
					"SK": &types.AttributeValueMemberS{Value: "METADATA"},
				},
			},
		},
		r.bumpMetaItem(time.Now()),
	}
	if session.IsActive() {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: activePK(session.UserID)},
					"SK": &types.AttributeValueMemberS{Value: "ACTIVE"},
				},
			},
		})
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// FindByIDs implements ports.SessionRepository
func (r *SessionRepository) FindByIDs(ctx context.Context, ids []string) ([]*entities.SleepSession, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: sessionPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		})
	}

	out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
		RequestItems: map[string]types.KeysAndAttributes{
			r.tableName: {Keys: keys},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to batch get sessions: %w", err)
	}

	var result []*entities.SleepSession
	for _, raw := range out.Responses[r.tableName] {
		var item sessionItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}
		session, err := fromSessionItem(item)
		if err != nil {
			return nil, err
		}
		result = append(result, session)
	}
	return result, nil
}

// CompletedForUsersBetween implements ports.SessionRepository. One GSI
// query per followed user, merged and ranked client-side; the follow-set is
// small and the per-user partitions are what the index gives us.
func (r *SessionRepository) CompletedForUsersBetween(ctx context.Context, userIDs []string, start, end time.Time, limit int) ([]*entities.SleepSession, error) {
	filter := expression.Name("ClockOutTime").Between(
		expression.Value(start.Format(time.RFC3339Nano)),
		expression.Value(end.Format(time.RFC3339Nano)),
	)

	var matched []*entities.SleepSession
	for _, userID := range userIDs {
		expr, err := expression.NewBuilder().
			WithKeyCondition(expression.Key("GSI1PK").Equal(expression.Value(sessionGSIPK(userID)))).
			WithFilter(filter).
			Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build query expression: %w", err)
		}

		paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to query sessions for user %s: %w", userID, err)
			}
			for _, raw := range page.Items {
				var item sessionItem
				if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
					return nil, fmt.Errorf("failed to unmarshal session: %w", err)
				}
				session, err := fromSessionItem(item)
				if err != nil {
					return nil, err
				}
				matched = append(matched, session)
			}
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Duration() != matched[j].Duration() {
			return matched[i].Duration() > matched[j].Duration()
		}
		return matched[i].ID < matched[j].ID
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// CompletedBetween implements ports.SessionRepository. A filtered scan is
// fine here; only the daily summary batch takes this path.
func (r *SessionRepository) CompletedBetween(ctx context.Context, start, end time.Time) ([]*entities.SleepSession, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("EntityType").Equal(expression.Value("SESSION")).
			And(expression.Name("ClockOutTime").Between(
				expression.Value(start.Format(time.RFC3339Nano)),
				expression.Value(end.Format(time.RFC3339Nano)),
			))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	var matched []*entities.SleepSession
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sessions: %w", err)
		}
		for _, raw := range page.Items {
			var item sessionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("failed to unmarshal session: %w", err)
			}
			session, err := fromSessionItem(item)
			if err != nil {
				return nil, err
			}
			matched = append(matched, session)
		}
	}
	return matched, nil
}

// LatestMutationAt implements ports.SessionRepository
func (r *SessionRepository) LatestMutationAt(ctx context.Context) (time.Time, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: metaPK},
			"SK": &types.AttributeValueMemberS{Value: metaSK},
		},
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get mutation meta: %w", err)
	}
	if out.Item == nil {
		return time.Time{}, nil
	}

	var meta struct {
		LatestMutationNano int64 `dynamodbav:"LatestMutationNano"`
	}
	if err := attributevalue.UnmarshalMap(out.Item, &meta); err != nil {
		return time.Time{}, fmt.Errorf("failed to unmarshal mutation meta: %w", err)
	}
	return time.Unix(0, meta.LatestMutationNano), nil
}

// bumpMetaItem builds the transaction member that advances the global
// latest-mutation timestamp
func (r *SessionRepository) bumpMetaItem(t time.Time) types.TransactWriteItem {
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: metaPK},
				"SK": &types.AttributeValueMemberS{Value: metaSK},
			},
			UpdateExpression: aws.String("SET LatestMutationNano = :now"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(t.UnixNano(), 10)},
			},
		},
	}
}

// isConditionalCancellation reports whether a transaction failed because a
// condition check lost, which for CreateActive means the active marker
// already existed
func isConditionalCancellation(err error) bool {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return false
	}
	for _, reason := range canceled.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}
