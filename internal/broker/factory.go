package broker

import (
	"fmt"

	"mqsieve/internal/config"
	"mqsieve/internal/logger"
	"mqsieve/internal/routing"
)

func NewProducer(cfg config.BrokerConfig, log logger.Logger) (Producer, error) {
	switch cfg.Type {
	case "rabbitmq":
		return NewRabbitMQProducer(cfg.RabbitMQ, log)
	case "kafka":
		return NewKafkaProducer(cfg.Kafka, log), nil
	default:
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
}

func NewConsumer(cfg config.BrokerConfig, identity routing.Identity, log logger.Logger) (Consumer, error) {
	switch cfg.Type {
	case "rabbitmq":
		return NewRabbitMQConsumer(cfg.RabbitMQ, identity, log)
	case "kafka":
		return NewKafkaConsumer(cfg.Kafka, log), nil
	default:
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
}
