package constants

import "time"

// Message header names understood by the extractor. The explicit header wins
// over the baggage item.
const (
	HeaderRoutingKey = "signadot-routing-key"
	HeaderBaggage    = "baggage"
	BaggageKeyName   = "sd-routing-key"
)

const (
	DefaultPollInterval   = 10 * time.Second
	DefaultRequestTimeout = 5 * time.Second
	RouteRulesPath        = "/api/v1/workloads/routing-rules"
)

const (
	DefaultExchange   = "orders_exchange"
	DefaultPublishKey = "orders"
	DefaultAMQPPort   = 5672
)

const (
	BrokerDialMaxAttempts    = 5
	BrokerDialInitialBackoff = 1 * time.Second
	BrokerDialMaxBackoff     = 15 * time.Second
)

const (
	EventListKey     = "events"
	EventListMaxLen  = 1000
	EventListPageLen = 100
)

const (
	BaselineName        = "Baseline"
	BaselineDefaultKind = "Deployment"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	SimulatedWorkDuration = 1 * time.Second
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)
