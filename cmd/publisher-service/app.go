package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"mqsieve/internal/broker"
	"mqsieve/internal/config"
	"mqsieve/internal/constants"
	"mqsieve/internal/events"
	"mqsieve/internal/logger"
	"mqsieve/internal/publisher"
	"mqsieve/pkg/health"
	"mqsieve/pkg/metrics"
	"mqsieve/pkg/ratelimit"
)

type App struct {
	Config *config.Config
	Logger logger.Logger

	producer    broker.Producer
	redisClient *redis.Client
	store       *events.Store
	server      *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("publisher-service")
	}
	return &App{
		Config: cfg,
		Logger: log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	metrics.RegisterPublisherMetrics()

	producer, err := broker.NewProducer(a.Config.Broker, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}
	a.producer = producer

	a.initEventStore(ctx)

	a.initHTTPServer()
	return nil
}

// initEventStore connects the Redis side-store. The publisher keeps working
// without it; only /events and /stats degrade.
func (a *App) initEventStore(ctx context.Context) {
	cfg := a.Config.Events.Redis
	if cfg.Host == "" {
		a.Logger.WarnwCtx(ctx, "Redis not configured, events will not be logged")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	store := events.NewStore(client)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		a.Logger.WarnwCtx(ctx, "Redis not available, events will not be logged",
			"error", err,
			"addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		)
		client.Close()
		return
	}

	a.redisClient = client
	a.store = store
	a.Logger.InfowCtx(ctx, "Connected to Redis event store",
		"addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	)
}

func (a *App) initHTTPServer() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	if a.Config.Publisher.RateLimit.Enabled {
		rlConfig := ratelimit.DefaultConfig()
		if a.Config.Publisher.RateLimit.RPS > 0 {
			rlConfig.RPS = a.Config.Publisher.RateLimit.RPS
		}
		if a.Config.Publisher.RateLimit.Burst > 0 {
			rlConfig.Burst = a.Config.Publisher.RateLimit.Burst
		}
		if a.Config.Publisher.RateLimit.CleanupInterval > 0 {
			rlConfig.CleanupInterval = time.Duration(a.Config.Publisher.RateLimit.CleanupInterval) * time.Second
		}
		if a.Config.Publisher.RateLimit.MaxAge > 0 {
			rlConfig.MaxAge = time.Duration(a.Config.Publisher.RateLimit.MaxAge) * time.Second
		}
		router.Use(ratelimit.Middleware(rlConfig))
	}

	checks := health.NewCheckerRegistry()
	if a.redisClient != nil {
		checks.Register(health.NewRedisChecker(a.redisClient))
	}
	if rmq, ok := a.producer.(*broker.RabbitMQProducer); ok {
		checks.Register(health.NewAMQPChecker(rmq.Connection()))
	}

	handler := publisher.NewHandler(a.producer, a.store, checks, a.Config.Sandbox.RoutingKey, a.Logger)
	handler.RegisterRoutes(router)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeoutSeconds * time.Second,
		WriteTimeout: a.Config.Server.WriteTimeoutSeconds * time.Second,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("Shutting down publisher service...")

	var errs []error

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close error: %w", err))
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.Logger.Info("Publisher service exited successfully")
	return nil
}
