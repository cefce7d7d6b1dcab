package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"mqsieve/internal/admission"
	"mqsieve/internal/broker"
	"mqsieve/internal/config"
	"mqsieve/internal/constants"
	"mqsieve/internal/consumer"
	"mqsieve/internal/logger"
	"mqsieve/internal/routeserver"
	"mqsieve/internal/routing"
	"mqsieve/pkg/health"
	"mqsieve/pkg/logging"
	"mqsieve/pkg/metrics"
)

type App struct {
	Config *config.Config
	Logger logger.Logger

	identity routing.Identity
	table    *routing.ActiveRouteTable
	poller   *routeserver.Poller
	consumer broker.Consumer
	service  *consumer.Service
	server   *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("consumer-service")
	}
	return &App{
		Config: cfg,
		Logger: log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	a.identity = routing.NewIdentity(a.Config.Sandbox)
	a.table = routing.NewActiveRouteTable()

	a.Logger.InfowCtx(ctx, "Initialized identity",
		"sandbox_name", a.identity.SandboxName,
		"is_baseline", a.identity.IsBaseline(),
	)

	metrics.RegisterConsumerMetrics()

	decider := admission.NewDecider(a.identity, a.table, a.Logger)
	handler := consumer.NewOrderHandler(a.Logger, constants.SimulatedWorkDuration)
	a.service = consumer.NewService(decider, handler, a.Logger)

	consumerBackend, err := broker.NewConsumer(a.Config.Broker, a.identity, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	a.consumer = consumerBackend

	if a.identity.IsBaseline() {
		a.poller = routeserver.NewPoller(
			a.routeLister(),
			a.table,
			time.Duration(a.Config.RouteServer.PollIntervalSeconds)*time.Second,
			a.Logger,
		)
	}

	if err := a.initHTTPServer(); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) routeLister() routeserver.RoutingKeyLister {
	var lister routeserver.RoutingKeyLister = routeserver.NewClient(a.Config.RouteServer)
	if a.Config.RouteServer.CircuitBreaker.Enabled {
		lister = routeserver.NewBreakerClient(lister, a.Config.RouteServer.CircuitBreaker)
	}
	return lister
}

func (a *App) initHTTPServer() error {
	mux := http.NewServeMux()

	healthRegistry := health.NewCheckerRegistry()
	if rmq, ok := a.consumer.(*broker.RabbitMQConsumer); ok {
		healthRegistry.Register(health.NewAMQPChecker(rmq.Connection()))
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		h := healthRegistry.Check(r.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, `{"status":"%s","timestamp":"%s"}`, h.Status, h.Timestamp.Format(time.RFC3339))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: mux,
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	ctx = logging.WithSandboxName(ctx, a.identity.SandboxName)

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

	if a.poller != nil {
		g.Go(func() error {
			a.Logger.InfowCtx(gCtx, "Starting route poller")
			return a.poller.Run(gCtx)
		})
	}

	g.Go(func() error {
		return a.consumer.Consume(gCtx, a.service.HandleDelivery)
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("Shutting down consumer service...")

	var errs []error

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("consumer close error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.Logger.Info("Consumer service exited successfully")
	return nil
}
