package routeserver

import (
	"context"
	"time"

	"mqsieve/internal/constants"
	"mqsieve/internal/logger"
	"mqsieve/internal/routing"
	"mqsieve/pkg/metrics"
)

// Poller refreshes the active route table from the route server on a fixed
// interval. It is the table's only writer and runs only for a baseline
// instance. A failed cycle leaves the previous snapshot installed; message
// consumption is never blocked on control-plane availability.
type Poller struct {
	lister   RoutingKeyLister
	table    *routing.ActiveRouteTable
	interval time.Duration
	logger   logger.Logger
}

func NewPoller(lister RoutingKeyLister, table *routing.ActiveRouteTable, interval time.Duration, log logger.Logger) *Poller {
	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}
	return &Poller{
		lister:   lister,
		table:    table,
		interval: interval,
		logger:   log,
	}
}

// Run polls until ctx is canceled and returns ctx.Err(). The first poll
// fires immediately so a restarted baseline converges without waiting a full
// interval.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)

	for {
		select {
		case <-ticker.C:
			p.poll(ctx)
		case <-ctx.Done():
			p.logger.InfowCtx(ctx, "Route poller stopped")
			return ctx.Err()
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	start := time.Now()

	keys, err := p.lister.RoutingKeys(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.RoutePollsTotal.WithLabelValues(metrics.PollStatusError).Inc()
		p.logger.WarnwCtx(ctx, "Route poll failed, keeping previous snapshot",
			"error", err,
			"active_routes", p.table.Len(),
		)
		return
	}

	p.table.Replace(keys)

	metrics.RoutePollsTotal.WithLabelValues(metrics.PollStatusSuccess).Inc()
	metrics.RoutePollDuration.Observe(float64(time.Since(start).Milliseconds()))
	metrics.SetActiveRoutes(p.table.Len())

	p.logger.InfowCtx(ctx, "Updated active routes",
		"active_routes", p.table.Len(),
		"routing_keys", keys,
	)
}
