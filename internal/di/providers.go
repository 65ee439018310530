package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/models"
	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/domain/repository"
	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/handler/api"
	mid "github.com/ParthPatel95/volt-site-seeker-sub021/internal/middleware"
	internalrepo "github.com/ParthPatel95/volt-site-seeker-sub021/internal/repository"
	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/service/aeso"
	icache "github.com/ParthPatel95/volt-site-seeker-sub021/internal/service/cache"
	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/service/weather"
	"github.com/ParthPatel95/volt-site-seeker-sub021/internal/usecase"
	pkgcache "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/cache"
	pkgch "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/clickhouse"
	"github.com/ParthPatel95/volt-site-seeker-sub021/pkg/config"
	xhttp "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/http"
	pkgkafka "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/kafka"
	applogger "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/logger"
	"github.com/ParthPatel95/volt-site-seeker-sub021/pkg/metrics"
	pkgqueue "github.com/ParthPatel95/volt-site-seeker-sub021/pkg/queue"
	"github.com/ParthPatel95/volt-site-seeker-sub021/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.observations (
            ts DateTime, pool_price Nullable(Float64), ail_mw Float64,
            gen_wind Float64, gen_solar Float64, gen_gas Float64, gen_other Float64,
            temp_calgary Nullable(Float64), temp_edmonton Nullable(Float64),
            price_lag_1h Nullable(Float64), price_lag_2h Nullable(Float64), price_lag_3h Nullable(Float64),
            price_lag_24h Nullable(Float64), price_lag_168h Nullable(Float64),
            price_rolling_avg_24h Nullable(Float64), price_rolling_std_24h Nullable(Float64)
        ) ENGINE=ReplacingMergeTree ORDER BY ts`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.weather_forecasts (
            location String, target_ts DateTime, temperature Float64,
            wind_speed Float64, cloud_cover Float64, fetched_at DateTime
        ) ENGINE=ReplacingMergeTree(fetched_at) ORDER BY (location, target_ts)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.model_parameters (
            version String, mean_target Float64, learning_rate Float64,
            feature_importance String, active UInt8, updated_at DateTime
        ) ENGINE=MergeTree ORDER BY (version, updated_at)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.price_predictions (
            generated_at DateTime, target_ts DateTime, horizon_hours UInt16,
            predicted_price Float64, conf_lower Float64, conf_upper Float64, conf_score Float64,
            regime String, model_version String, features String
        ) ENGINE=MergeTree ORDER BY (target_ts, generated_at)`, db),
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideLogger creates the application logger.
func ProvideLogger() (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
}

// ProvideObservationStore creates the ClickHouse observation store.
func ProvideObservationStore(chClient *pkgch.Client, cfg *config.Config) repository.ObservationStore {
	return internalrepo.NewCHObservationStore(chClient, cfg.ClickHouse.Database+".observations")
}

// ProvideWeatherStore creates the ClickHouse weather forecast store.
func ProvideWeatherStore(chClient *pkgch.Client, cfg *config.Config) repository.WeatherStore {
	return internalrepo.NewCHWeatherStore(chClient, cfg.ClickHouse.Database+".weather_forecasts")
}

// ProvideParameterStore creates the ClickHouse model parameter store wrapped
// in a short-lived cache. With Redis enabled the cache is layered
// (memory in front of Redis) so parameter reads survive restarts warm.
func ProvideParameterStore(chClient *pkgch.Client, cfg *config.Config, logger *applogger.Logger) repository.ParameterStore {
	store := internalrepo.NewCHParameterStore(chClient, cfg.ClickHouse.Database+".model_parameters")

	var c pkgcache.Service = pkgcache.NewMemoryCache()
	if cfg.Forecast.Redis.Enabled {
		host, port := splitRedisAddr(cfg.Forecast.Redis.Addr)
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(host),
			pkgcache.WithRedisPort(port),
			pkgcache.WithRedisPassword(cfg.Forecast.Redis.Password),
			pkgcache.WithRedisDB(cfg.Forecast.Redis.DB),
		)
		if err != nil {
			logger.Warn("redis cache unavailable, using memory cache", applogger.Error(err))
		} else {
			c = pkgcache.NewLayeredCache(rc)
		}
	}
	return internalrepo.NewCachedParameterStore(store, c, 5*time.Minute)
}

func splitRedisAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}

// ProvidePredictionStore creates the ClickHouse prediction store.
func ProvidePredictionStore(chClient *pkgch.Client, cfg *config.Config) repository.PredictionStore {
	return internalrepo.NewCHPredictionStore(chClient, cfg.ClickHouse.Database+".price_predictions")
}

// ProvideObservationPublisher creates the Kafka publisher repository.
func ProvideObservationPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaObservationsHandler registers the handler for the observations topic.
func ProvideKafkaObservationsHandler(store repository.ObservationStore, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaObservationsHandler {
	return usecase.NewKafkaObservationsHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideAESOStream creates the AESO WebSocket stream.
func ProvideAESOStream(cfg *config.Config) repository.ObservationStream {
	return aeso.New(
		cfg.AESO.APIKey,
		cfg.AESO.WebSocketURL,
		cfg.AESO.Channels,
		cfg.AESO.ReconnectDelay,
		cfg.AESO.PingInterval,
	)
}

// ProvideObservationProcessor creates the observation processor use case.
func ProvideObservationProcessor(
	pub repository.Publisher,
	store repository.ObservationStore,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.ObservationProcessor {
	return usecase.NewObservationProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideObservationCollector creates the observation collector use case.
func ProvideObservationCollector(
	stream repository.ObservationStream,
	processor *usecase.ObservationProcessor,
	metrics repository.Metrics,
) *usecase.ObservationCollector {
	// Build middleware pipeline between WebSocket and the backend
	pipe := mid.NewIngestPipeline(processor, metrics,
		mid.WithMaxRPS(4),
		mid.WithBufferSize(500),
	)
	return usecase.NewObservationCollector(stream, processor, metrics, pipe)
}

// ProvideWeatherPoller creates the weather forecast poller.
func ProvideWeatherPoller(store repository.WeatherStore, metrics repository.Metrics, l *applogger.Logger, cfg *config.Config) *weather.Poller {
	if cfg.Weather.BaseURL == "" {
		return nil
	}
	locations := make([]weather.Location, 0, len(cfg.Weather.Locations))
	for _, loc := range cfg.Weather.Locations {
		locations = append(locations, weather.Location{
			Name:      loc.Name,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		})
	}
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.Weather.Timeout))
	return weather.NewPoller(client, store, metrics, cfg.Weather.BaseURL, locations,
		weather.WithInterval(cfg.Weather.PollInterval),
		weather.WithHorizonHours(cfg.Forecast.MaxHorizonHours),
		weather.WithLogger(l),
	)
}

// ProvideForecastRunner creates the forecast runner use case.
func ProvideForecastRunner(
	obs repository.ObservationStore,
	wx repository.WeatherStore,
	params repository.ParameterStore,
	preds repository.PredictionStore,
	metrics repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ForecastRunner {
	thresholds := models.DefaultRegimeThresholds()
	if cfg.Forecast.Thresholds.HighWindMW > 0 {
		thresholds.HighWindMW = cfg.Forecast.Thresholds.HighWindMW
	}
	if cfg.Forecast.Thresholds.PeakDemandMW > 0 {
		thresholds.PeakDemandMW = cfg.Forecast.Thresholds.PeakDemandMW
	}
	if cfg.Forecast.Thresholds.LowDemandMW > 0 {
		thresholds.LowDemandMW = cfg.Forecast.Thresholds.LowDemandMW
	}
	locations := make([]string, 0, len(cfg.Weather.Locations))
	for _, loc := range cfg.Weather.Locations {
		locations = append(locations, loc.Name)
	}
	return usecase.NewForecastRunner(obs, wx, params, preds,
		usecase.RunnerConfig{
			ModelVersion:    cfg.Forecast.ModelVersion,
			LookbackHours:   cfg.Forecast.LookbackHours,
			MaxHorizonHours: cfg.Forecast.MaxHorizonHours,
			Thresholds:      thresholds,
			Locations:       locations,
		},
		usecase.WithRunnerLogger(l),
		usecase.WithRunnerMetrics(metrics),
	)
}

// ProvideAccuracyEvaluator creates the accuracy evaluator use case.
func ProvideAccuracyEvaluator(preds repository.PredictionStore, obs repository.ObservationStore) *usecase.AccuracyEvaluator {
	return usecase.NewAccuracyEvaluator(preds, obs)
}

// ProvideForecastHandler creates the HTTP handler with its response cache.
func ProvideForecastHandler(l *applogger.Logger, runner *usecase.ForecastRunner, accuracy *usecase.AccuracyEvaluator, collector *usecase.ObservationCollector, chClient *pkgch.Client, cfg *config.Config) *api.ForecastEchoHandler {
	h := api.NewForecastEchoHandler(l, runner, accuracy)
	h.SetStreamProbe(collector.IsConnected)
	h.SetStoreProbe(chClient.Health)
	if cfg.Forecast.Redis.Enabled {
		h.SetCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Forecast.Redis.Addr,
			Password: cfg.Forecast.Redis.Password,
			DB:       cfg.Forecast.Redis.DB,
		}))
	} else {
		h.SetCache(icache.NewTTLCache())
	}
	return h
}

// ProvideForecastQueue creates the Redis job queue for scheduled forecast
// runs. Returns nil when scheduling is disabled or Redis is not configured.
func ProvideForecastQueue(runner *usecase.ForecastRunner, l *applogger.Logger, cfg *config.Config) *pkgqueue.RedisQueue {
	if !cfg.Forecast.Schedule.Enabled || !cfg.Forecast.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Forecast.Redis.Addr,
		Password: cfg.Forecast.Redis.Password,
		DB:       cfg.Forecast.Redis.DB,
	})
	q := pkgqueue.NewRedisQueue(l, &pkgqueue.QueueConfig{
		Workers:    1,
		RetryLimit: 2,
		RetryDelay: 30 * time.Second,
	}, client, pkgqueue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewForecastJob(runner, l))
	return q
}

// kafkaLogPublisher adapts the Kafka producer to the log collector sink.
type kafkaLogPublisher struct {
	producer *pkgkafka.Producer
}

func (p kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	producer *pkgkafka.Producer,
	collector *usecase.ObservationCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaObservationsHandler,
	chClient *pkgch.Client,
	poller *weather.Poller,
	jobQueue *pkgqueue.RedisQueue,
	handler *api.ForecastEchoHandler,
) *server.App {
	// Attach hook to consumer: NoopHook for now; can be replaced via config
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	// Aggregate repeated error logs onto a Kafka topic for offline review.
	if producer != nil {
		logger.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.Topic + ".errors",
			Publisher:      kafkaLogPublisher{producer: producer},
		})
	}
	app := server.New(cfg, collector, consumer, kh, chClient, poller)
	app.SetJobQueue(jobQueue)
	app.SetHTTPHandler(handler)
	// attach observation processor to app for closing resources via collector
	if collector != nil {
		app.ObsProc = collector.Processor()
	}
	return app
}
