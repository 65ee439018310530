//go:build wireinject
// +build wireinject

package di

import (
	"github.com/ParthPatel95/volt-site-seeker-sub021/pkg/config"
	"github.com/ParthPatel95/volt-site-seeker-sub021/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideMetrics,
		ProvideLogger,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideObservationStore,
		ProvideWeatherStore,
		ProvideParameterStore,
		ProvidePredictionStore,
		ProvideObservationPublisher,
		ProvideAESOStream,

		// Use cases
		ProvideObservationProcessor,
		ProvideObservationCollector,
		ProvideKafkaObservationsHandler,
		ProvideForecastRunner,
		ProvideAccuracyEvaluator,

		// Services
		ProvideWeatherPoller,
		ProvideForecastQueue,

		// HTTP
		ProvideForecastHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
