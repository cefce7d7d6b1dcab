package config

import (
	"time"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Broker      BrokerConfig      `mapstructure:"broker"`
	Sandbox     SandboxConfig     `mapstructure:"sandbox"`
	RouteServer RouteServerConfig `mapstructure:"route_server"`
	Events      EventsConfig      `mapstructure:"events"`
	Publisher   PublisherConfig   `mapstructure:"publisher"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type ServerConfig struct {
	Port                int           `mapstructure:"port"`
	ReadTimeoutSeconds  time.Duration `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds time.Duration `mapstructure:"write_timeout_seconds"`
}

type BrokerConfig struct {
	Type     string         `mapstructure:"type"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

type RabbitMQConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Exchange string `mapstructure:"exchange"`
	// Queue defaults to "consumer-<sandbox name>" when empty.
	Queue           string `mapstructure:"queue"`
	QueueDurable    *bool  `mapstructure:"queue_durable"`
	QueueAutoDelete *bool  `mapstructure:"queue_auto_delete"`
	QueueExclusive  bool   `mapstructure:"queue_exclusive"`
	PublishKey      string `mapstructure:"publish_key"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
	Topic   string   `mapstructure:"topic"`
}

// SandboxConfig fixes the instance identity for the process lifetime. An
// empty routing key means the instance is the baseline.
type SandboxConfig struct {
	Name       string `mapstructure:"name"`
	RoutingKey string `mapstructure:"routing_key"`
}

type RouteServerConfig struct {
	URL                   string               `mapstructure:"url"`
	PollIntervalSeconds   int                  `mapstructure:"poll_interval_seconds"`
	RequestTimeoutSeconds int                  `mapstructure:"request_timeout_seconds"`
	Baseline              BaselineConfig       `mapstructure:"baseline"`
	CircuitBreaker        CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type BaselineConfig struct {
	Kind      string `mapstructure:"kind"`
	Namespace string `mapstructure:"namespace"`
	Name      string `mapstructure:"name"`
}

type CircuitBreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests uint32        `mapstructure:"max_requests"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type EventsConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PublisherConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
	CleanupInterval int     `mapstructure:"cleanup_interval"`
	MaxAge          int     `mapstructure:"max_age"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
