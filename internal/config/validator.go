package config

import (
	"fmt"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errors = append(errors, err)
	}

	if err := validateRouteServer(cfg.RouteServer, cfg.Sandbox); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	if cfg.Type == "" {
		return &ValidationError{
			Field:   "broker.type",
			Message: "broker type is required",
		}
	}

	switch cfg.Type {
	case "rabbitmq":
		return validateRabbitMQ(cfg.RabbitMQ)
	case "kafka":
		return validateKafka(cfg.Kafka)
	default:
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %s (supported: rabbitmq, kafka)", cfg.Type),
		}
	}
}

func validateRabbitMQ(cfg RabbitMQConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "broker.rabbitmq.host",
			Message: "RabbitMQ host is required",
		}
	}

	if cfg.Port != 0 && (cfg.Port < 1 || cfg.Port > 65535) {
		return &ValidationError{
			Field:   "broker.rabbitmq.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address must not be empty",
			}
		}
	}

	if cfg.Topic == "" {
		return &ValidationError{
			Field:   "broker.kafka.topic",
			Message: "Kafka topic is required",
		}
	}

	return nil
}

// The route server is only consulted by a baseline instance; sandbox
// instances carry a static routing key and may leave it unconfigured.
func validateRouteServer(cfg RouteServerConfig, sandbox SandboxConfig) error {
	if sandbox.RoutingKey != "" {
		return nil
	}

	if cfg.URL == "" {
		return &ValidationError{
			Field:   "route_server.url",
			Message: "route server URL is required for a baseline instance",
		}
	}

	if cfg.PollIntervalSeconds < 0 {
		return &ValidationError{
			Field:   "route_server.poll_interval_seconds",
			Message: "poll interval must not be negative",
		}
	}

	if cfg.RequestTimeoutSeconds < 0 {
		return &ValidationError{
			Field:   "route_server.request_timeout_seconds",
			Message: "request timeout must not be negative",
		}
	}

	return nil
}
