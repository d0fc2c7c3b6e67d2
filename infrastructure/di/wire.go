//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"goodnight/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideRepositories,
	ProvideFeedCache,
	ProvideMetrics,
	ProvideDispatcher,
	ProvideSleepService,
	ProvideFollowService,
	ProvideFeedService,
	ProvideSummaryService,
	wire.Struct(new(Container), "*"),
)

// InitializeContainerWire is the wire-generated alternative to the
// hand-rolled InitializeContainer
func InitializeContainerWire(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
