package main

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	analyticsDomain "github.com/davicafu/rosterlab/internal/analytics/domain"
	analyticsCH "github.com/davicafu/rosterlab/internal/analytics/infra/outbound/clickhouse"
	analyticsMemory "github.com/davicafu/rosterlab/internal/analytics/infra/outbound/memory"
	"github.com/davicafu/rosterlab/internal/config"
	consumerDomain "github.com/davicafu/rosterlab/internal/consumer/domain"
	sharedEvents "github.com/davicafu/rosterlab/internal/shared/domain/events"
	infraEvents "github.com/davicafu/rosterlab/internal/shared/infra/events"
	sharedBus "github.com/davicafu/rosterlab/internal/shared/infra/platform/bus"
	sharedCache "github.com/davicafu/rosterlab/internal/shared/infra/platform/cache"
	studentDomain "github.com/davicafu/rosterlab/internal/student/domain"
)

// cleanup acumula los cierres en orden inverso, como los defer de main.
type cleanup []func()

func (c *cleanup) add(fn func()) { *c = append(*c, fn) }

func (c cleanup) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// newCache usa Redis si responde; si no, la caché en memoria.
func newCache(ctx context.Context, cfg *config.Config, log *zap.Logger, closers *cleanup) sharedCache.Cache {
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria", zap.Error(err))
		rdb.Close()
		return sharedCache.NewInMemoryCache(ttl, 3*ttl)
	}

	closers.add(func() { rdb.Close() })
	log.Info("✅ Redis conectado, cache habilitado", zap.String("addr", cfg.RedisAddr))
	return sharedCache.NewRedisCache(rdb, ttl, "rosterlab:")
}

// newBus devuelve el publicador del relayer y engancha handler como consumidor.
func newBus(ctx context.Context, cfg *config.Config, handler infraEvents.MessageHandler, log *zap.Logger, closers *cleanup) sharedBus.EventBus {
	if !cfg.UseKafka {
		log.Info("⚡️ Usando bus de eventos en memoria (canales de Go)")
		bus := infraEvents.NewInMemoryEventBus(log)
		infraEvents.Listen(ctx, bus.Subscribe(64), handler)
		return bus
	}

	log.Info("🚀 Usando Kafka como bus de eventos", zap.Strings("brokers", cfg.KafkaBrokers))
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	closers.add(func() { writer.Close() })

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		GroupID:     cfg.KafkaGroupID,
		GroupTopics: []string{studentDomain.StudentTopic, consumerDomain.ConsumerTopic},
		MinBytes:    10e3, // 10KB
		MaxBytes:    10e6, // 10MB
	})
	closers.add(func() { reader.Close() })
	infraEvents.NewConsumerAdapter(reader, handler, log).Start(ctx)

	return infraEvents.NewKafkaPublisher(writer, studentDomain.StudentTopic, log)
}

// newMongo conecta con MongoDB. Sólo se llama con CONSUMER_STORE=mongo.
func newMongo(ctx context.Context, cfg *config.Config, closers *cleanup) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	closers.add(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(ctx)
	})
	return client, nil
}

// newAnalyticsRepo usa ClickHouse si está configurado y responde.
func newAnalyticsRepo(ctx context.Context, cfg *config.Config, log *zap.Logger, closers *cleanup) analyticsDomain.RegistrationRepository {
	if cfg.ClickHouseAddr == "" {
		return analyticsMemory.NewRegistrationRepo()
	}

	repo, err := analyticsCH.NewRegistrationRepo(ctx, analyticsCH.Options{Addr: cfg.ClickHouseAddr, Database: cfg.ClickHouseDB})
	if err == nil {
		if err = repo.InitSchema(ctx); err != nil {
			repo.Close()
		}
	}
	if err != nil {
		log.Warn("⚠️ ClickHouse no disponible, analítica en memoria", zap.Error(err))
		return analyticsMemory.NewRegistrationRepo()
	}
	closers.add(func() { repo.Close() })
	log.Info("✅ ClickHouse conectado", zap.String("addr", cfg.ClickHouseAddr))
	return repo
}

func mergeRegistries(registries ...map[string]sharedEvents.EventMetadata) map[string]sharedEvents.EventMetadata {
	out := make(map[string]sharedEvents.EventMetadata)
	for _, r := range registries {
		for k, v := range r {
			out[k] = v
		}
	}
	return out
}
