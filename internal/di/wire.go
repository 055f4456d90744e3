//go:build wireinject
// +build wireinject

package di

import (
	"StockCast/pkg/config"
	"StockCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideRedisClient,

		// Market data clients
		ProvideFinnhubClient,
		ProvideQuoteStream,

		// Optional stores and sinks
		ProvideClickHouseClient,
		ProvideBarStore,
		ProvidePredictionStore,
		ProvideRunPublisher,

		// Use cases
		ProvidePipeline,
		ProvideRunRegistry,
		ProvideRunJob,
		ProvideQueue,
		ProvideQuotes,

		// HTTP surface
		ProvideDashboardHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
