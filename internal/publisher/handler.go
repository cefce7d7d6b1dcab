package publisher

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mqsieve/internal/broker"
	"mqsieve/internal/constants"
	"mqsieve/internal/events"
	"mqsieve/internal/logger"
	"mqsieve/pkg/health"
	"mqsieve/pkg/logging"
	"mqsieve/pkg/metrics"
)

// HTTP request headers the publisher recognizes; the explicit one wins,
// mirroring the consumer-side extraction order.
const (
	requestHeaderRoutingKey = "x-signadot-routing-key"
	requestHeaderBaggage    = "baggage"
)

const baselineRoutingKey = "baseline"

// Handler exposes the publish API. It stamps routing metadata from the
// incoming request onto the broker message so downstream consumers can make
// their admission decisions, and records each publish in the event
// side-store. A missing event store degrades /events and /stats, never
// publishing.
type Handler struct {
	producer   broker.Producer
	store      *events.Store
	checks     *health.CheckerRegistry
	sandboxKey string
	logger     logger.Logger
}

func NewHandler(producer broker.Producer, store *events.Store, checks *health.CheckerRegistry, sandboxKey string, log logger.Logger) *Handler {
	if checks == nil {
		checks = health.NewCheckerRegistry()
	}
	return &Handler{
		producer:   producer,
		store:      store,
		checks:     checks,
		sandboxKey: strings.TrimSpace(sandboxKey),
		logger:     log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/publish", h.Publish)
	router.GET("/events", h.Events)
	router.GET("/stats", h.Stats)
	router.GET("/health", h.Health)
}

func (h *Handler) Publish(c *gin.Context) {
	ctx := c.Request.Context()

	body := map[string]interface{}{}
	if c.Request.Body != nil {
		// Empty or malformed bodies publish an empty payload, matching the
		// fire-and-forget contract.
		_ = json.NewDecoder(c.Request.Body).Decode(&body)
	}

	routingKey := h.resolveRoutingKey(c)
	targeted := routingKey != "" && routingKey != baselineRoutingKey

	headers := map[string]string{}
	if targeted {
		headers[constants.HeaderRoutingKey] = routingKey
		headers[constants.HeaderBaggage] = UpsertBaggage(
			c.GetHeader(requestHeaderBaggage),
			constants.BaggageKeyName,
			routingKey,
		)
	}

	messageID := uuid.NewString()
	body["routing_key"] = routingKey
	body["message_id"] = messageID
	ctx = logging.WithMessageID(ctx, messageID)

	payload, err := json.Marshal(body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.producer.Publish(ctx, payload, headers); err != nil {
		h.logger.ErrorwCtx(ctx, "Failed to publish message",
			"error", err,
			"routing_key", routingKey,
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to publish message"})
		return
	}

	metrics.PublishedMessagesTotal.WithLabelValues(boolLabel(targeted)).Inc()
	h.logger.InfowCtx(ctx, "Published message", "routing_key", routingKey)

	if h.store != nil {
		if err := h.store.Log(ctx, events.TypeMessagePublished, map[string]interface{}{
			"routing_key": routingKey,
			"message":     body,
		}); err != nil {
			h.logger.ErrorwCtx(ctx, "Failed to log event", "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "published",
		"routing_key": routingKey,
		"message":     body,
	})
}

// resolveRoutingKey decides which routing key a publish carries: explicit
// request header, then baggage item, then the key injected into a sandboxed
// publisher's environment, then baseline.
func (h *Handler) resolveRoutingKey(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader(requestHeaderRoutingKey)); key != "" {
		return key
	}

	if baggage := c.GetHeader(requestHeaderBaggage); baggage != "" {
		for _, item := range strings.Split(baggage, ",") {
			k, v, ok := strings.Cut(item, "=")
			if !ok {
				continue
			}
			if strings.TrimSpace(k) == constants.BaggageKeyName {
				if value := strings.TrimSpace(v); value != "" {
					return value
				}
			}
		}
	}

	if h.sandboxKey != "" {
		return h.sandboxKey
	}

	return baselineRoutingKey
}

func (h *Handler) Events(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event store not available"})
		return
	}

	recent, err := h.store.Recent(c.Request.Context(), constants.EventListPageLen)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, recent)
}

func (h *Handler) Stats(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event store not available"})
		return
	}

	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) Health(c *gin.Context) {
	result := h.checks.Check(c.Request.Context())

	statusCode := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, result)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
