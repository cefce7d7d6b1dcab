package integration

import (
	"context"
	"os"
	"testing"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	rabbitmqmodule "github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	redismodule "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"mqsieve/internal/config"
)

func init() {
	if os.Getenv("TESTCONTAINERS_RYUK_DISABLED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	}
}

// SetupRabbitMQ starts a broker container and returns a config pointing at
// it.
func SetupRabbitMQ(t *testing.T) config.RabbitMQConfig {
	t.Helper()

	ctx := context.Background()

	container, err := rabbitmqmodule.Run(ctx, "rabbitmq:3.12-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5672/tcp").WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start rabbitmq container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate rabbitmq container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get rabbitmq host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5672/tcp")
	if err != nil {
		t.Fatalf("failed to get rabbitmq port: %v", err)
	}

	return config.RabbitMQConfig{
		Host:     host,
		Port:     port.Int(),
		User:     "guest",
		Password: "guest",
	}
}

// SetupRedis starts a Redis container and returns a connected client.
func SetupRedis(t *testing.T) *redisclient.Client {
	t.Helper()

	ctx := context.Background()

	container, err := redismodule.Run(ctx, "redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("6379/tcp").WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	addr, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	client := redisclient.NewClient(&redisclient.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("failed to ping redis: %v", err)
	}

	return client
}
