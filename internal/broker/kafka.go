package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"mqsieve/internal/config"
	"mqsieve/internal/logger"
)

type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
		Async:    false,
	}
	return &KafkaProducer{writer: w, logger: log}
}

func (p *KafkaProducer) Publish(ctx context.Context, body []byte, headers map[string]string) error {
	kafkaHeaders := make([]kafka.Header, 0, len(headers))
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{Key: k, Value: []byte(v)})
	}

	err := p.writer.WriteMessages(ctx,
		kafka.Message{
			Value:   body,
			Headers: kafkaHeaders,
			Time:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type KafkaConsumer struct {
	cfg    config.KafkaConfig
	reader *kafka.Reader
	logger logger.Logger
}

func NewKafkaConsumer(cfg config.KafkaConfig, log logger.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		cfg:    cfg,
		logger: log,
	}
}

// Consume mirrors the AMQP backend's always-ack contract: every fetched
// message is committed after the handler returns, success or not.
func (c *KafkaConsumer) Consume(ctx context.Context, handler HandlerFunc) error {
	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.cfg.Brokers,
		GroupID:  c.cfg.GroupID,
		Topic:    c.cfg.Topic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})

	c.logger.InfowCtx(ctx, "Started consuming",
		"topic", c.cfg.Topic,
		"brokers", c.cfg.Brokers,
		"group_id", c.cfg.GroupID,
	)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.InfowCtx(ctx, "Stopped consuming",
					"topic", c.cfg.Topic,
					"reason", "context canceled",
				)
				return ctx.Err()
			}
			return fmt.Errorf("failed to fetch kafka message: %w", err)
		}

		headers := make(map[string]string, len(m.Headers))
		for _, h := range m.Headers {
			headers[h.Key] = string(h.Value)
		}

		if err := handler(ctx, Delivery{Body: m.Value, Headers: headers}); err != nil {
			c.logger.ErrorwCtx(ctx, "Handler returned error",
				"error", err,
				"topic", c.cfg.Topic,
			)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			return fmt.Errorf("failed to commit kafka message: %w", err)
		}
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
