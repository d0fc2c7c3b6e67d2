package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"goodnight/domain/entities"
)

// FollowRepository implements ports.FollowRepository on DynamoDB. Edges
// live under PK=FOLLOW#<follower>, SK=USER#<followed>; GSI1 inverts the
// edge for follower lookups. The conditional put makes the pair unique at
// the storage level, backing up the service-level duplicate check.
type FollowRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewFollowRepository creates a DynamoDB follow repository
func NewFollowRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) *FollowRepository {
	return &FollowRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

type followItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	EntityType string `dynamodbav:"EntityType"`
	FollowerID string `dynamodbav:"FollowerID"`
	FollowedID string `dynamodbav:"FollowedID"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

func followPK(followerID string) string    { return fmt.Sprintf("FOLLOW#%s", followerID) }
func followSK(followedID string) string    { return fmt.Sprintf("USER#%s", followedID) }
func followGSIPK(followedID string) string { return fmt.Sprintf("FOLLOWED#%s", followedID) }

// Create implements ports.FollowRepository
func (r *FollowRepository) Create(ctx context.Context, edge *entities.FollowEdge) error {
	item, err := attributevalue.MarshalMap(followItem{
		PK:         followPK(edge.FollowerID),
		SK:         followSK(edge.FollowedID),
		GSI1PK:     followGSIPK(edge.FollowedID),
		GSI1SK:     fmt.Sprintf("USER#%s", edge.FollowerID),
		EntityType: "FOLLOW",
		FollowerID: edge.FollowerID,
		FollowedID: edge.FollowedID,
		CreatedAt:  edge.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal follow edge: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("failed to create follow edge: %w", err)
	}
	return nil
}

// Delete implements ports.FollowRepository
func (r *FollowRepository) Delete(ctx context.Context, followerID, followedID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: followPK(followerID)},
			"SK": &types.AttributeValueMemberS{Value: followSK(followedID)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete follow edge: %w", err)
	}
	return nil
}

// Exists implements ports.FollowRepository
func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: followPK(followerID)},
			"SK": &types.AttributeValueMemberS{Value: followSK(followedID)},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to get follow edge: %w", err)
	}
	return out.Item != nil, nil
}

// FollowedIDs implements ports.FollowRepository
func (r *FollowRepository) FollowedIDs(ctx context.Context, followerID string) ([]string, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("PK").Equal(expression.Value(followPK(followerID)))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	var ids []string
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query followed users: %w", err)
		}
		for _, raw := range page.Items {
			var item followItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("failed to unmarshal follow edge: %w", err)
			}
			ids = append(ids, item.FollowedID)
		}
	}
	return ids, nil
}

// FollowerIDs implements ports.FollowRepository
func (r *FollowRepository) FollowerIDs(ctx context.Context, followedID string) ([]string, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("GSI1PK").Equal(expression.Value(followGSIPK(followedID)))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	var ids []string
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query followers: %w", err)
		}
		for _, raw := range page.Items {
			var item followItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("failed to unmarshal follow edge: %w", err)
			}
			ids = append(ids, item.FollowerID)
		}
	}
	return ids, nil
}
