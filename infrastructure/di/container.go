package di

import (
	"context"

	"go.uber.org/zap"

	"goodnight/application/services"
	"goodnight/infrastructure/cache"
	"goodnight/infrastructure/config"
	"goodnight/infrastructure/messaging"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Repos          Repositories
	FeedCache      *cache.Service
	Dispatcher     *messaging.Dispatcher
	SleepService   *services.SleepService
	FollowService  *services.FollowService
	FeedService    *services.FeedService
	SummaryService *services.SummaryService
}

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dynamoClient := ProvideDynamoDBClient(awsCfg)
	ebClient := ProvideEventBridgeClient(awsCfg)
	cwClient := ProvideCloudWatchClient(awsCfg)

	repos, err := ProvideRepositories(cfg, dynamoClient, logger)
	if err != nil {
		return nil, err
	}

	feedCache := ProvideFeedCache()
	metrics := ProvideMetrics(cfg, cwClient)
	dispatcher := ProvideDispatcher(cfg, ebClient, logger)

	// Session mutations fan out into the follow-set cache through the
	// dispatcher. Keeping the subscription here makes the write-path side
	// effects visible in one place instead of hiding them in the stores.
	dispatcher.Subscribe(services.NewFeedCacheInvalidator(repos.Follows, feedCache, logger))

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Repos:          repos,
		FeedCache:      feedCache,
		Dispatcher:     dispatcher,
		SleepService:   ProvideSleepService(repos, dispatcher, logger),
		FollowService:  ProvideFollowService(repos, logger),
		FeedService:    ProvideFeedService(repos, feedCache, metrics, logger),
		SummaryService: ProvideSummaryService(repos, logger),
	}, nil
}

// Shutdown releases container-held resources
func (c *Container) Shutdown() {
	if c.FeedCache != nil {
		c.FeedCache.Stop()
	}
}
