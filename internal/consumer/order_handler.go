package consumer

import (
	"context"
	"encoding/json"
	"time"

	"mqsieve/internal/constants"
	"mqsieve/internal/logger"
)

type orderPayload struct {
	OrderID string  `json:"order_id"`
	Amount  float64 `json:"amount"`
}

// NewOrderHandler returns the demo business handler: parse an order, do
// some simulated work. Malformed payloads are logged and dropped rather
// than failed, since there is no redelivery to benefit from.
func NewOrderHandler(log logger.Logger, workDuration time.Duration) Handler {
	if workDuration <= 0 {
		workDuration = constants.SimulatedWorkDuration
	}

	return func(ctx context.Context, payload []byte, headers map[string]string) error {
		var order orderPayload
		if err := json.Unmarshal(payload, &order); err != nil {
			log.ErrorwCtx(ctx, "Invalid JSON payload",
				"error", err,
				"payload_bytes", len(payload),
			)
			return nil
		}

		orderID := order.OrderID
		if orderID == "" {
			orderID = "unknown"
		}

		log.InfowCtx(ctx, "Processing order",
			"order_id", orderID,
			"amount", order.Amount,
		)

		select {
		case <-time.After(workDuration):
		case <-ctx.Done():
			return ctx.Err()
		}

		log.InfowCtx(ctx, "Completed order", "order_id", orderID)
		return nil
	}
}
