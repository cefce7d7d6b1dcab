package broker

import (
	"context"
)

// Delivery is one received message: opaque payload plus string headers. The
// broker backends normalize their native header types (AMQP tables, Kafka
// record headers) into the string map before the handler sees it.
type Delivery struct {
	Body    []byte
	Headers map[string]string
}

type HandlerFunc func(ctx context.Context, d Delivery) error

// Consumer drives the receive/ack cycle against the configured queue or
// topic. Every delivery is acknowledged exactly once after the handler
// returns, whatever the handler's outcome; only loss of the broker
// connection terminates Consume with an error.
type Consumer interface {
	Consume(ctx context.Context, handler HandlerFunc) error
	Close() error
}

type Producer interface {
	Publish(ctx context.Context, body []byte, headers map[string]string) error
	Close() error
}
