package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"goodnight/domain/entities"
)

// SummaryRepository implements ports.SummaryRepository on DynamoDB. A plain
// put gives upsert semantics; (user, date) is the key, so re-running a day
// replaces its rows.
type SummaryRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewSummaryRepository creates a DynamoDB summary repository
func NewSummaryRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *SummaryRepository {
	return &SummaryRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type summaryItem struct {
	PK                        string `dynamodbav:"PK"`
	SK                        string `dynamodbav:"SK"`
	EntityType                string `dynamodbav:"EntityType"`
	UserID                    string `dynamodbav:"UserID"`
	Date                      string `dynamodbav:"Date"`
	TotalSleepDurationMinutes int    `dynamodbav:"TotalSleepDurationMinutes"`
	NumberOfSleepSessions     int    `dynamodbav:"NumberOfSleepSessions"`
	UpdatedAt                 string `dynamodbav:"UpdatedAt"`
}

func summaryPK(userID string) string { return fmt.Sprintf("SUMMARY#%s", userID) }
func summarySK(date string) string   { return fmt.Sprintf("DATE#%s", date) }

// Upsert implements ports.SummaryRepository
func (r *SummaryRepository) Upsert(ctx context.Context, summary *entities.DailySleepSummary) error {
	item, err := attributevalue.MarshalMap(summaryItem{
		PK:                        summaryPK(summary.UserID),
		SK:                        summarySK(summary.Date),
		EntityType:                "SUMMARY",
		UserID:                    summary.UserID,
		Date:                      summary.Date,
		TotalSleepDurationMinutes: summary.TotalSleepDurationMinutes,
		NumberOfSleepSessions:     summary.NumberOfSleepSessions,
		UpdatedAt:                 summary.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert summary: %w", err)
	}
	return nil
}

// GetByUserAndDate implements ports.SummaryRepository
func (r *SummaryRepository) GetByUserAndDate(ctx context.Context, userID, date string) (*entities.DailySleepSummary, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: summaryPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: summarySK(date)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item summaryItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	return &entities.DailySleepSummary{
		UserID:                    item.UserID,
		Date:                      item.Date,
		TotalSleepDurationMinutes: item.TotalSleepDurationMinutes,
		NumberOfSleepSessions:     item.NumberOfSleepSessions,
		UpdatedAt:                 updatedAt,
	}, nil
}
