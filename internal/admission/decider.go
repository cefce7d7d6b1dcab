package admission

import (
	"context"

	"mqsieve/internal/logger"
	"mqsieve/internal/routing"
	"mqsieve/pkg/metrics"
)

// Decider computes the per-message accept/reject decision before any
// business handling runs.
//
// Sandbox mode: accept only messages carrying this sandbox's routing key.
//
// Baseline mode: accept untargeted messages; accept targeted messages whose
// sandbox is not in the active route table (the baseline covers for inactive
// or not-yet-registered sandboxes); reject messages whose sandbox is live.
// Right after a sandbox comes up, the baseline may process a few of its
// messages until the next poll installs the new key; the window is bounded
// by the poll interval plus one request timeout.
type Decider struct {
	identity routing.Identity
	table    *routing.ActiveRouteTable
	logger   logger.Logger
}

func NewDecider(identity routing.Identity, table *routing.ActiveRouteTable, log logger.Logger) *Decider {
	return &Decider{
		identity: identity,
		table:    table,
		logger:   log,
	}
}

func (d *Decider) ShouldProcess(ctx context.Context, headers map[string]string) bool {
	msgKey := routing.ExtractRoutingKey(headers)

	if !d.identity.IsBaseline() {
		accept := msgKey == d.identity.RoutingKey
		d.record(ctx, "sandbox", accept, "message_key", msgKey, "my_key", d.identity.RoutingKey)
		return accept
	}

	if msgKey == "" {
		d.record(ctx, "baseline", true, "reason", "no routing key")
		return true
	}

	if !d.table.Contains(msgKey) {
		d.record(ctx, "baseline", true, "reason", "inactive sandbox", "message_key", msgKey)
		return true
	}

	d.record(ctx, "baseline", false, "reason", "active sandbox", "message_key", msgKey)
	return false
}

func (d *Decider) record(ctx context.Context, mode string, accept bool, keysAndValues ...interface{}) {
	outcome := metrics.AdmissionOutcomeAccepted
	msg := "Accepted message"
	if !accept {
		outcome = metrics.AdmissionOutcomeRejected
		msg = "Skipped message"
	}

	metrics.AdmissionDecisionsTotal.WithLabelValues(mode, outcome).Inc()
	d.logger.InfowCtx(ctx, msg, append([]interface{}{"mode", mode}, keysAndValues...)...)
}
