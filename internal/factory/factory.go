package factory

import (
	"context"
	"fmt"
	"sync"

	"honeypot-service/internal/auth"
	"honeypot-service/internal/client"
	"honeypot-service/internal/config"
	"honeypot-service/internal/repository"
	"honeypot-service/internal/repository/memory"
	mongorepo "honeypot-service/internal/repository/mongo"
	redisrepo "honeypot-service/internal/repository/redis"
	"honeypot-service/internal/service"
	"honeypot-service/internal/util"
)

// Factory owns the lifecycle of every external dependency: the event store,
// the token store, and the optional event sinks.
type Factory struct {
	config *config.Config

	mongoClient      *mongorepo.Client
	redisClient      *client.RedisClient
	kafkaPublisher   *client.KafkaPublisher
	clickhouseMirror *client.ClickHouseMirror

	store          repository.AttackStore
	authenticator  *auth.AdminAuthenticator
	serviceFactory *service.ServiceFactory

	closeOnce sync.Once
}

// NewFactory loads config, initializes the logger, and wires all clients.
// Production requires MongoDB; development falls back to the in-memory
// store and token store when the corresponding URLs are absent.
func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	f := &Factory{config: cfg}

	if err := f.initStore(); err != nil {
		return nil, err
	}
	if err := f.initAuth(); err != nil {
		return nil, err
	}
	f.initSinks()

	var sinks []service.EventSink
	if f.kafkaPublisher != nil {
		sinks = append(sinks, f.kafkaPublisher)
	}
	if f.clickhouseMirror != nil {
		sinks = append(sinks, f.clickhouseMirror)
	}
	f.serviceFactory = service.NewServiceFactory(f.store, sinks, util.Get())

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.Bool("mongo_enabled", f.mongoClient != nil),
		util.Bool("redis_enabled", f.redisClient != nil),
		util.Bool("kafka_enabled", f.kafkaPublisher != nil),
		util.Bool("clickhouse_enabled", f.clickhouseMirror != nil),
	)

	return f, nil
}

func (f *Factory) initStore() error {
	if f.config.Mongo.URL == "" {
		if f.config.IsProduction() {
			return fmt.Errorf("MONGO_URL is required in production")
		}
		util.Warn("MONGO_URL not set - using in-memory event store, events will not survive restarts")
		f.store = memory.NewAttackStore()
		return nil
	}

	mongoClient, err := mongorepo.NewClient(f.config, util.Get())
	if err != nil {
		return fmt.Errorf("failed to initialize MongoDB: %w", err)
	}
	f.mongoClient = mongoClient
	f.store = mongorepo.NewAttackRepository(mongoClient, util.Get())
	return nil
}

func (f *Factory) initAuth() error {
	var tokens auth.TokenStore
	if f.config.Redis.URL == "" {
		util.Warn("REDIS_URL not set - admin tokens held in memory only")
		tokens = auth.NewMemoryTokenStore()
	} else {
		redisClient, err := client.NewRedisClient(f.config, util.Get())
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		f.redisClient = redisClient
		tokens = redisrepo.NewTokenStore(redisClient)
	}

	authenticator, err := auth.NewAdminAuthenticator(f.config.Admin, tokens)
	if err != nil {
		return fmt.Errorf("failed to initialize admin authenticator: %w", err)
	}
	f.authenticator = authenticator
	return nil
}

// initSinks wires the optional analytics sinks. Sink failures at startup are
// warnings: the honeypot keeps capturing even when the analytics pipeline is
// down.
func (f *Factory) initSinks() {
	if f.config.Kafka.Enabled {
		publisher, err := client.NewKafkaPublisher(f.config, util.Get())
		if err != nil {
			util.Warn("Kafka publisher initialization failed - proceeding without Kafka", util.ErrorField(err))
		} else {
			f.kafkaPublisher = publisher
		}
	}

	if f.config.Clickhouse.Enabled {
		mirror, err := client.NewClickHouseMirror(f.config, util.Get())
		if err != nil {
			util.Warn("ClickHouse mirror initialization failed - proceeding without ClickHouse", util.ErrorField(err))
		} else {
			f.clickhouseMirror = mirror
		}
	}
}

// Config returns the loaded configuration.
func (f *Factory) Config() *config.Config {
	return f.config
}

// ServiceFactory returns the wired service layer.
func (f *Factory) ServiceFactory() *service.ServiceFactory {
	return f.serviceFactory
}

// Authenticator returns the admin authenticator.
func (f *Factory) Authenticator() *auth.AdminAuthenticator {
	return f.authenticator
}

// HealthCheck pings every initialized client.
func (f *Factory) HealthCheck(ctx context.Context) map[string]error {
	healthErrors := make(map[string]error)

	if f.mongoClient != nil {
		if err := f.mongoClient.HealthCheck(ctx); err != nil {
			healthErrors["mongodb"] = err
		}
	}
	if f.redisClient != nil {
		if err := f.redisClient.HealthCheck(ctx); err != nil {
			healthErrors["redis"] = err
		}
	}
	if f.kafkaPublisher != nil {
		if err := f.kafkaPublisher.HealthCheck(ctx); err != nil {
			healthErrors["kafka"] = err
		}
	}
	if f.clickhouseMirror != nil {
		if err := f.clickhouseMirror.HealthCheck(ctx); err != nil {
			healthErrors["clickhouse"] = err
		}
	}

	return healthErrors
}

// Close shuts down all clients in reverse dependency order.
func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		util.Info("Shutting down factory...")

		if f.clickhouseMirror != nil {
			if err := f.clickhouseMirror.Close(); err != nil {
				util.Error("Failed to close ClickHouse mirror", util.ErrorField(err))
			}
		}
		if f.kafkaPublisher != nil {
			if err := f.kafkaPublisher.Close(); err != nil {
				util.Error("Failed to close Kafka publisher", util.ErrorField(err))
			}
		}
		if f.redisClient != nil {
			if err := f.redisClient.Close(); err != nil {
				util.Error("Failed to close Redis client", util.ErrorField(err))
			}
		}
		if f.mongoClient != nil {
			if err := f.mongoClient.Close(); err != nil {
				util.Error("Failed to close MongoDB client", util.ErrorField(err))
			}
		}

		util.Sync()
		util.Info("Factory shutdown completed")
	})

	return nil
}
