package routeserver

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"

	"mqsieve/internal/config"
)

// BreakerClient short-circuits route server calls after repeated failures so
// a dead control plane stops costing a request timeout per poll cycle. The
// poller treats an open breaker like any other poll failure: the previous
// snapshot stays installed.
type BreakerClient struct {
	lister RoutingKeyLister
	cb     *gobreaker.CircuitBreaker
}

func NewBreakerClient(lister RoutingKeyLister, cfg config.CircuitBreakerConfig) *BreakerClient {
	settings := gobreaker.Settings{
		Name:        "route-server",
		MaxRequests: 1,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	if cfg.MaxRequests > 0 {
		settings.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		settings.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		settings.Timeout = cfg.Timeout
	}

	return &BreakerClient{
		lister: lister,
		cb:     gobreaker.NewCircuitBreaker(settings),
	}
}

func (c *BreakerClient) RoutingKeys(ctx context.Context) ([]string, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.lister.RoutingKeys(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("route server call: %w", err)
	}

	keys, ok := result.([]string)
	if !ok {
		return nil, fmt.Errorf("route server client returned invalid result type")
	}

	return keys, nil
}

func (c *BreakerClient) State() gobreaker.State {
	return c.cb.State()
}
