package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"

	"goodnight/application/ports"
	"goodnight/application/services"
	"goodnight/infrastructure/cache"
	"goodnight/infrastructure/config"
	"goodnight/infrastructure/messaging"
	"goodnight/infrastructure/messaging/eventbridge"
	dynamorepo "goodnight/infrastructure/persistence/dynamodb"
	memoryrepo "goodnight/infrastructure/persistence/memory"
	"goodnight/pkg/observability"
)

// Repositories bundles the storage ports behind one provider so the driver
// switch happens in exactly one place
type Repositories struct {
	Sessions  ports.SessionRepository
	Follows   ports.FollowRepository
	Users     ports.UserRepository
	Summaries ports.SummaryRepository
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration, instrumented for X-Ray when
// tracing is enabled
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}

	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}

	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideRepositories creates the storage layer for the configured driver
func ProvideRepositories(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) (Repositories, error) {
	switch cfg.StorageDriver {
	case "dynamodb":
		return Repositories{
			Sessions:  dynamorepo.NewSessionRepository(client, cfg.TableName, cfg.IndexName, logger),
			Follows:   dynamorepo.NewFollowRepository(client, cfg.TableName, cfg.IndexName, logger),
			Users:     dynamorepo.NewUserRepository(client, cfg.TableName, logger),
			Summaries: dynamorepo.NewSummaryRepository(client, cfg.TableName, logger),
		}, nil
	case "memory":
		return Repositories{
			Sessions:  memoryrepo.NewSessionRepository(),
			Follows:   memoryrepo.NewFollowRepository(),
			Users:     memoryrepo.NewUserRepository(),
			Summaries: memoryrepo.NewSummaryRepository(),
		}, nil
	default:
		return Repositories{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// ProvideFeedCache creates the process-wide feed cache
func ProvideFeedCache() *cache.Service {
	return cache.NewService()
}

// ProvideMetrics creates metrics, or a no-op when metrics are disabled
func ProvideMetrics(cfg *config.Config, client *awscloudwatch.Client) *observability.Metrics {
	if !cfg.EnableMetrics {
		return nil
	}
	namespace := fmt.Sprintf("Goodnight/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client)
}

// ProvideDispatcher creates the event dispatcher, forwarding to
// EventBridge when a bus is configured
func ProvideDispatcher(cfg *config.Config, ebClient *awseventbridge.Client, logger *zap.Logger) *messaging.Dispatcher {
	var forwarder ports.EventPublisher
	if cfg.EventBusName != "" {
		forwarder = eventbridge.NewPublisher(ebClient, cfg.EventBusName, logger)
	}
	return messaging.NewDispatcher(forwarder, logger)
}

// ProvideSleepService creates the sleep lifecycle service
func ProvideSleepService(repos Repositories, dispatcher *messaging.Dispatcher, logger *zap.Logger) *services.SleepService {
	return services.NewSleepService(repos.Sessions, dispatcher, logger)
}

// ProvideFollowService creates the follow graph service
func ProvideFollowService(repos Repositories, logger *zap.Logger) *services.FollowService {
	return services.NewFollowService(repos.Follows, repos.Users, logger)
}

// ProvideFeedService creates the feed service
func ProvideFeedService(repos Repositories, feedCache *cache.Service, metrics *observability.Metrics, logger *zap.Logger) *services.FeedService {
	return services.NewFeedService(repos.Sessions, repos.Follows, repos.Users, feedCache, metrics, logger)
}

// ProvideSummaryService creates the daily summary service
func ProvideSummaryService(repos Repositories, logger *zap.Logger) *services.SummaryService {
	return services.NewSummaryService(repos.Sessions, repos.Summaries, logger)
}
