package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func bindEnvVariables() {
	viper.BindEnv("broker.type", "BROKER_TYPE")
	viper.BindEnv("broker.rabbitmq.host", "RABBITMQ_HOST")
	viper.BindEnv("broker.rabbitmq.user", "RABBITMQ_USER")
	viper.BindEnv("broker.rabbitmq.password", "RABBITMQ_PASSWORD")
	viper.BindEnv("broker.rabbitmq.exchange", "CUSTOMER_EXCHANGE")
	viper.BindEnv("broker.rabbitmq.queue", "QUEUE_NAME")
	viper.BindEnv("broker.rabbitmq.publish_key", "AMQP_ROUTING_KEY")
	viper.BindEnv("broker.kafka.brokers", "BROKER_KAFKA_BROKERS")
	viper.BindEnv("broker.kafka.group_id", "BROKER_KAFKA_GROUP_ID")
	viper.BindEnv("broker.kafka.topic", "BROKER_KAFKA_TOPIC")

	viper.BindEnv("sandbox.name", "SIGNADOT_SANDBOX_NAME")
	viper.BindEnv("sandbox.routing_key", "SIGNADOT_SANDBOX_ROUTING_KEY")

	viper.BindEnv("route_server.url", "ROUTESERVER_URL")
	viper.BindEnv("route_server.baseline.kind", "BASELINE_KIND")
	viper.BindEnv("route_server.baseline.namespace", "BASELINE_NAMESPACE")
	viper.BindEnv("route_server.baseline.name", "BASELINE_NAME")

	viper.BindEnv("events.redis.host", "REDIS_HOST")
	viper.BindEnv("events.redis.port", "REDIS_PORT")
	viper.BindEnv("events.redis.password", "REDIS_PASSWORD")

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")
}

func applyEnvOverrides(cfg *Config) error {
	if brokersEnv := viper.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}

	if portEnv := viper.GetString("RABBITMQ_PORT"); portEnv != "" {
		port, err := ParseBrokerPort(portEnv)
		if err != nil {
			return err
		}
		cfg.Broker.RabbitMQ.Port = port
	}

	return nil
}

var tcpPortPattern = regexp.MustCompile(`:(\d+)$`)

// ParseBrokerPort accepts either a plain port ("5672") or the k8s service
// link form ("tcp://10.0.0.12:5672").
func ParseBrokerPort(raw string) (int, error) {
	if strings.HasPrefix(raw, "tcp://") {
		m := tcpPortPattern.FindStringSubmatch(raw)
		if m == nil {
			return 0, fmt.Errorf("could not parse broker port from %q", raw)
		}
		return strconv.Atoi(m[1])
	}

	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("could not parse broker port from %q: %w", raw, err)
	}
	return port, nil
}
