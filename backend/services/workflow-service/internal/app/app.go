package app

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libdb "solarshare/backend/libs/db"
	libredis "solarshare/backend/libs/redis"
	"solarshare/backend/services/workflow-service/internal/config"
	"solarshare/backend/services/workflow-service/internal/feed"
	httpserver "solarshare/backend/services/workflow-service/internal/http"
	"solarshare/backend/services/workflow-service/internal/http/handlers"
	"solarshare/backend/services/workflow-service/internal/http/middleware"
	"solarshare/backend/services/workflow-service/internal/password"
	redisstore "solarshare/backend/services/workflow-service/internal/redis"
	"solarshare/backend/services/workflow-service/internal/repository"
	"solarshare/backend/services/workflow-service/internal/service"
)

// App wires workflow-service dependencies. Postgres, redis and kafka are optional.
type App struct {
	server      *httpserver.Server
	auth        *service.AuthService
	pool        *pgxpool.Pool
	redisClient *redis.Client
	feedSource  *feed.KafkaSource
	feedSink    *feed.KafkaSink
	feedServer  *feed.Server
	logger      *zap.Logger
}

// New constructs the application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger}

	var tariffRepo service.TariffRepository
	var opts []service.Option
	if cfg.Database.DSN != "" {
		pool, err := libdb.NewPostgresPool(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		journal := repository.NewJournalRepository(pool)
		if err := journal.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		tariffRepo = repository.NewTariffRepository(pool)
		opts = append(opts, service.WithJournal(journal))
	}

	var slot service.ActorSlot = service.NewMemorySlot()
	if cfg.Redis.Addr != "" {
		client, err := libredis.NewRedisClient(ctx, libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redisClient = client
		slot = redisstore.NewActorSlot(client, cfg.Redis.TTL)
	}

	hasher := password.NewBcryptHasher(cfg.Auth.BcryptCost)
	directory, err := repository.NewUserDirectory(repository.DemoUsers, cfg.Auth.DemoPassword, hasher)
	if err != nil {
		a.Close()
		return nil, err
	}
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL())
	a.auth = service.NewAuthService(directory, hasher, tokens, slot, cfg.Auth.LoginDelay, logger)

	tariffs := service.NewTariffService(tariffRepo, cfg.Charging.PricePerKWh)
	opts = append(opts, service.WithMeter(service.NewFixedRateMeter(cfg.Charging.ChargerPowerKW)))
	workflow := service.NewWorkflowService(a.auth, tariffs, logger, opts...)
	if cfg.Charging.SeedDemoData {
		workflow.SeedDemoData()
	}

	hub := feed.NewHub(0, logger)
	var sink feed.Sink = feed.NewHubSink(hub)
	if len(cfg.Kafka.Brokers) > 0 {
		kcfg := feed.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic, GroupID: cfg.Kafka.GroupID}
		source, err := feed.NewKafkaSource(kcfg, hub, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		kafkaSink, err := feed.NewKafkaSink(kcfg)
		if err != nil {
			_ = source.Close()
			a.Close()
			return nil, err
		}
		a.feedSource = source
		a.feedSink = kafkaSink
		sink = kafkaSink
	}
	feedServer := feed.NewServer(hub, 0, logger)
	a.feedServer = feedServer

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Auth:          handlers.NewAuthHandlers(a.auth, logger),
		Reservations:  handlers.NewReservationHandlers(workflow, logger),
		Allocations:   handlers.NewAllocationHandlers(workflow, logger),
		Sessions:      handlers.NewSessionHandlers(workflow, logger),
		Payments:      handlers.NewPaymentHandlers(workflow, logger),
		Payouts:       handlers.NewPayoutHandlers(workflow, logger),
		Notifications: handlers.NewNotificationHandlers(workflow, logger),
		Feed:          handlers.NewFeedHandlers(hub, sink, logger),
		FeedSocket:    feedServer.HandleWS,
		Health:        handlers.NewHealthHandler(),
		Authenticator: middleware.NewAuthenticator(tokens, a.auth),
		CORSOrigins:   cfg.HTTP.CORSOrigins,
		Logger:        logger,
	})
	a.server = httpserver.NewServer(cfg.HTTPAddress(), router, httpserver.ServerOptions{
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, logger)

	return a, nil
}

// Run restores the persisted actor, starts the feed consumer and serves HTTP.
func (a *App) Run(ctx context.Context) error {
	a.auth.Restore(ctx)

	if a.feedSource != nil {
		go func() {
			if err := a.feedSource.Run(ctx); err != nil {
				a.logger.Warn("charging request feed stopped", zap.Error(err))
			}
		}()
	}

	err := a.server.Run(ctx)
	a.feedServer.Shutdown()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases resources.
func (a *App) Close() {
	if a.feedServer != nil {
		a.feedServer.Shutdown()
	}
	if a.feedSource != nil {
		if err := a.feedSource.Close(); err != nil {
			a.logger.Warn("failed to close kafka reader", zap.Error(err))
		}
	}
	if a.feedSink != nil {
		if err := a.feedSink.Close(); err != nil {
			a.logger.Warn("failed to close kafka writer", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
