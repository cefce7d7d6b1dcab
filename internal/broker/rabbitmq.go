package broker

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"mqsieve/internal/config"
	"mqsieve/internal/constants"
	"mqsieve/internal/logger"
	"mqsieve/internal/routing"
	"mqsieve/pkg/retry"
)

func amqpURL(cfg config.RabbitMQConfig) string {
	user := cfg.User
	if user == "" {
		user = "guest"
	}
	password := cfg.Password
	if password == "" {
		password = "guest"
	}
	port := cfg.Port
	if port == 0 {
		port = constants.DefaultAMQPPort
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", user, password, cfg.Host, port)
}

func exchangeName(cfg config.RabbitMQConfig) string {
	if cfg.Exchange != "" {
		return cfg.Exchange
	}
	return constants.DefaultExchange
}

// dial connects with a short backoff so a consumer starting alongside the
// broker in the same deployment does not crash-loop.
func dial(cfg config.RabbitMQConfig, log logger.Logger) (*amqp.Connection, error) {
	policy := retry.Policy{
		MaxAttempts:     constants.BrokerDialMaxAttempts,
		InitialInterval: constants.BrokerDialInitialBackoff,
		MaxInterval:     constants.BrokerDialMaxBackoff,
		Multiplier:      2.0,
	}

	var conn *amqp.Connection
	err := retry.RetryNotify(context.Background(), policy,
		func() error {
			var dialErr error
			conn, dialErr = amqp.Dial(amqpURL(cfg))
			return dialErr
		},
		func(err error, next time.Duration) {
			log.Warnw("RabbitMQ dial failed, retrying",
				"error", err,
				"next_attempt_in", next,
			)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// declareExchange sets up the durable topic exchange shared by all
// instances. Topic type keeps broker-level routing coarse; isolation happens
// in-process from message headers.
func declareExchange(ch *amqp.Channel, name string) error {
	return ch.ExchangeDeclare(name, "topic", true, false, false, false, nil)
}

type RabbitMQProducer struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	publishKey string
	logger     logger.Logger
}

func NewRabbitMQProducer(cfg config.RabbitMQConfig, log logger.Logger) (*RabbitMQProducer, error) {
	conn, err := dial(cfg, log)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	exchange := exchangeName(cfg)
	if err := declareExchange(ch, exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	publishKey := cfg.PublishKey
	if publishKey == "" {
		publishKey = constants.DefaultPublishKey
	}

	return &RabbitMQProducer{
		conn:       conn,
		channel:    ch,
		exchange:   exchange,
		publishKey: publishKey,
		logger:     log,
	}, nil
}

func (p *RabbitMQProducer) Publish(ctx context.Context, body []byte, headers map[string]string) error {
	table := amqp.Table{}
	for k, v := range headers {
		table[k] = v
	}

	err := p.channel.PublishWithContext(ctx,
		p.exchange,
		p.publishKey,
		false,
		false,
		amqp.Publishing{
			Headers:      table,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (p *RabbitMQProducer) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// Connection exposes the underlying connection for health checks.
func (p *RabbitMQProducer) Connection() *amqp.Connection {
	return p.conn
}

type RabbitMQConsumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  logger.Logger
}

// NewRabbitMQConsumer declares the instance's queue and binds it to the
// shared exchange with a wildcard key. Queue shape follows the identity:
// the baseline gets a durable queue that survives restarts, a sandbox gets
// an auto-delete queue torn down with the instance. Config can override
// either.
func NewRabbitMQConsumer(cfg config.RabbitMQConfig, identity routing.Identity, log logger.Logger) (*RabbitMQConsumer, error) {
	conn, err := dial(cfg, log)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	exchange := exchangeName(cfg)
	if err := declareExchange(ch, exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	queueName := cfg.Queue
	if queueName == "" {
		queueName = "consumer-" + identity.SandboxName
	}

	durable := identity.IsBaseline()
	if cfg.QueueDurable != nil {
		durable = *cfg.QueueDurable
	}
	autoDelete := !identity.IsBaseline()
	if cfg.QueueAutoDelete != nil {
		autoDelete = *cfg.QueueAutoDelete
	}

	queue, err := ch.QueueDeclare(queueName, durable, autoDelete, cfg.QueueExclusive, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	if err := ch.QueueBind(queue.Name, "#", exchange, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue %s: %w", queue.Name, err)
	}

	log.Infow("Declared queue",
		"queue", queue.Name,
		"exchange", exchange,
		"durable", durable,
		"auto_delete", autoDelete,
		"exclusive", cfg.QueueExclusive,
	)

	return &RabbitMQConsumer{
		conn:    conn,
		channel: ch,
		queue:   queue.Name,
		logger:  log,
	}, nil
}

func (c *RabbitMQConsumer) Consume(ctx context.Context, handler HandlerFunc) error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming from %s: %w", c.queue, err)
	}

	c.logger.InfowCtx(ctx, "Started consuming", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfowCtx(ctx, "Stopped consuming",
				"queue", c.queue,
				"reason", "context canceled",
			)
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				// Channel closed under us; let the caller decide whether to
				// exit or reconnect.
				return fmt.Errorf("broker connection lost while consuming from %s", c.queue)
			}

			if err := handler(ctx, Delivery{
				Body:    d.Body,
				Headers: normalizeAMQPHeaders(d.Headers),
			}); err != nil {
				c.logger.ErrorwCtx(ctx, "Handler returned error",
					"error", err,
					"queue", c.queue,
				)
			}

			// Ack unconditionally so skipped messages and handler failures
			// never requeue.
			if err := d.Ack(false); err != nil {
				return fmt.Errorf("failed to ack delivery: %w", err)
			}
		}
	}
}

func (c *RabbitMQConsumer) Close() error {
	if err := c.channel.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}

func (c *RabbitMQConsumer) Connection() *amqp.Connection {
	return c.conn
}

// normalizeAMQPHeaders flattens an AMQP header table to strings. Byte
// values arrive from some publishers and are decoded as UTF-8 text.
func normalizeAMQPHeaders(table amqp.Table) map[string]string {
	if len(table) == 0 {
		return nil
	}

	headers := make(map[string]string, len(table))
	for k, v := range table {
		switch value := v.(type) {
		case string:
			headers[k] = value
		case []byte:
			headers[k] = string(value)
		default:
			headers[k] = fmt.Sprint(value)
		}
	}
	return headers
}
