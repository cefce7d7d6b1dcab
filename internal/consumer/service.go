package consumer

import (
	"context"
	"fmt"

	"mqsieve/internal/admission"
	"mqsieve/internal/broker"
	"mqsieve/internal/logger"
	"mqsieve/internal/routing"
	"mqsieve/pkg/logging"
	"mqsieve/pkg/metrics"
)

// Handler is the seam between this core and the application's business
// logic: a capability handed to the service, not an inheritance hook.
type Handler func(ctx context.Context, payload []byte, headers map[string]string) error

// Service is the per-message receive pipeline: decide, conditionally
// handle, and let the broker layer acknowledge. It always returns nil so
// every message reaches its single ack; handler failures are logged here,
// not retried and not dead-lettered, which keeps poison messages from
// looping through redelivery at the cost of dropping them.
type Service struct {
	decider *admission.Decider
	handler Handler
	logger  logger.Logger
}

func NewService(decider *admission.Decider, handler Handler, log logger.Logger) *Service {
	return &Service{
		decider: decider,
		handler: handler,
		logger:  log,
	}
}

func (s *Service) HandleDelivery(ctx context.Context, d broker.Delivery) error {
	if key := routing.ExtractRoutingKey(d.Headers); key != "" {
		ctx = logging.WithRoutingKey(ctx, key)
	}

	if !s.decider.ShouldProcess(ctx, d.Headers) {
		metrics.ConsumerMessagesTotal.WithLabelValues(metrics.ConsumeOutcomeSkipped).Inc()
		return nil
	}

	if err := s.invokeHandler(ctx, d); err != nil {
		metrics.ConsumerMessagesTotal.WithLabelValues(metrics.ConsumeOutcomeHandlerError).Inc()
		s.logger.ErrorwCtx(ctx, "Error handling message",
			"error", err,
			"payload_bytes", len(d.Body),
		)
		return nil
	}

	metrics.ConsumerMessagesTotal.WithLabelValues(metrics.ConsumeOutcomeProcessed).Inc()
	return nil
}

func (s *Service) invokeHandler(ctx context.Context, d broker.Delivery) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during message handling: %v", r)
		}
	}()
	return s.handler(ctx, d.Body, d.Headers)
}
