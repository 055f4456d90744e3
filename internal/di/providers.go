package di

import (
	"context"
	"fmt"
	"time"

	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/handler/api"
	internalrepo "StockCast/internal/repository"
	"StockCast/internal/service/cache"
	"StockCast/internal/service/marketdata"
	"StockCast/internal/usecase"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/queue"
	"StockCast/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger with the recent-error
// buffer enabled so the dashboard can serve /api/errors.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	l.EnableRecentErrors(100)
	return l, nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideRedisClient creates the shared Redis client used by the job
// queue and the fundamentals cache.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideFinnhubClient creates the Finnhub REST client backed by a
// Redis fundamentals cache.
func ProvideFinnhubClient(cfg *config.Config, l *applogger.Logger, rdb *redis.Client) *marketdata.Client {
	httpClient := xhttp.NewClient(xhttp.WithTimeout(cfg.Finnhub.Timeout))
	client := marketdata.NewClient(httpClient, l, cfg.Finnhub.BaseURL, cfg.Finnhub.APIKey)
	ttl := cfg.Cache.FundamentalsTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return client.WithFundamentalsCache(cache.NewRedisCache(rdb), ttl)
}

// ProvideQuoteStream creates the Finnhub websocket quote stream.
func ProvideQuoteStream(cfg *config.Config, l *applogger.Logger) *marketdata.Stream {
	return marketdata.NewStream(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Finnhub.Symbols,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
		l,
	)
}

// ProvideClickHouseClient creates the shared ClickHouse client, or nil
// when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideBarStore creates the ClickHouse bar store when a client is
// configured, otherwise the pipeline falls through to the remote source.
func ProvideBarStore(ch *pkgch.Client, l *applogger.Logger) (domrepo.BarStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewCHBarStore(ch)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse bar schema: %w", err)
	}
	return store, nil
}

// ProvidePredictionStore creates the ClickHouse prediction store when a
// client is configured.
func ProvidePredictionStore(ch *pkgch.Client, l *applogger.Logger) (domrepo.PredictionStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewCHPredictionStore(ch)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse prediction schema: %w", err)
	}
	return store, nil
}

// ProvideRunPublisher creates the Kafka run-event publisher when enabled.
func ProvideRunPublisher(cfg *config.Config, l *applogger.Logger) (domrepo.PredictionPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaRunPublisher(producer, cfg.Kafka.Topic)
	pub.SetLogger(l)
	return pub, nil
}

// ProvidePipeline assembles the forecasting pipeline use case.
func ProvidePipeline(
	cfg *config.Config,
	client *marketdata.Client,
	bars domrepo.BarStore,
	preds domrepo.PredictionStore,
	pub domrepo.PredictionPublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.PipelineUseCase {
	pc := usecase.PipelineConfig{
		SaveDir:     cfg.Pipeline.SaveDir,
		ModelPath:   cfg.Pipeline.ModelPath,
		InitialCash: cfg.Pipeline.InitialCash,
		TestSize:    cfg.Pipeline.TestSize,
	}
	uc := usecase.NewPipelineUseCase(pc, client, client, internalrepo.NewCSVStore(), l)
	uc.WithMetrics(m)
	if bars != nil {
		uc.WithBarStore(bars)
	}
	if preds != nil {
		uc.WithPredictionStore(preds)
	}
	if pub != nil {
		uc.WithPublisher(pub)
	}
	return uc
}

// ProvideRunRegistry creates the async run registry.
func ProvideRunRegistry(cfg *config.Config) *usecase.RunRegistry {
	return usecase.NewRunRegistry(cfg.Cache.RunTTL)
}

// ProvideRunJob creates the queued pipeline-run job.
func ProvideRunJob(pipeline *usecase.PipelineUseCase, registry *usecase.RunRegistry, l *applogger.Logger) *usecase.RunPipelineJob {
	return usecase.NewRunPipelineJob(pipeline, registry, l)
}

// ProvideQueue creates the Redis job queue with the pipeline job
// registered. The queue is started by the app lifecycle.
func ProvideQueue(cfg *config.Config, l *applogger.Logger, rdb *redis.Client, job *usecase.RunPipelineJob) *queue.RedisQueue {
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.MaxRetries,
		RetryDelay: cfg.Queue.RetryDelay,
	}, rdb, queue.ModeProducerConsumer)
	q.RegisterJob(job)
	return q
}

// ProvideQuotes creates the latest-quote use case.
func ProvideQuotes(stream *marketdata.Stream, m domrepo.Metrics) *usecase.QuoteUseCase {
	return usecase.NewQuoteUseCase(stream, m)
}

// ProvideDashboardHandler creates the HTTP API handler.
func ProvideDashboardHandler(l *applogger.Logger, q *queue.RedisQueue, registry *usecase.RunRegistry, quotes *usecase.QuoteUseCase, preds domrepo.PredictionStore) *api.DashboardHandler {
	h := api.NewDashboardHandler(l, q, registry, quotes)
	if preds != nil {
		h.WithPredictionStore(preds)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.DashboardHandler,
	q *queue.RedisQueue,
	stream *marketdata.Stream,
	ch *pkgch.Client,
	pub domrepo.PredictionPublisher,
) *server.App {
	return server.New(cfg, l, handler, q, stream, ch, pub)
}
