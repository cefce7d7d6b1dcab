package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mqsieve/internal/logger"
)

type capturingProducer struct {
	mu      sync.Mutex
	body    []byte
	headers map[string]string
	err     error
}

func (p *capturingProducer) Publish(ctx context.Context, body []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.body = body
	p.headers = headers
	return p.err
}

func (p *capturingProducer) Close() error { return nil }

func newTestRouter(producer *capturingProducer, sandboxKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(producer, nil, nil, sandboxKey, logger.NopLogger()).RegisterRoutes(router)
	return router
}

func doPublish(t *testing.T, router *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPublishBaselineTraffic(t *testing.T) {
	producer := &capturingProducer{}
	router := newTestRouter(producer, "")

	w := doPublish(t, router, `{"order_id":"o-1","amount":10}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "published", resp["status"])
	assert.Equal(t, "baseline", resp["routing_key"])

	// Baseline traffic carries no routing headers.
	assert.Empty(t, producer.headers)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(producer.body, &payload))
	assert.Equal(t, "o-1", payload["order_id"])
	assert.Equal(t, "baseline", payload["routing_key"])
	assert.NotEmpty(t, payload["message_id"])
}

func TestPublishWithExplicitHeader(t *testing.T) {
	producer := &capturingProducer{}
	router := newTestRouter(producer, "")

	w := doPublish(t, router, `{}`, map[string]string{"x-signadot-routing-key": "sbx-42"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "sbx-42", producer.headers["signadot-routing-key"])
	assert.Equal(t, "sd-routing-key=sbx-42", producer.headers["baggage"])
}

func TestPublishWithBaggageHeader(t *testing.T) {
	producer := &capturingProducer{}
	router := newTestRouter(producer, "")

	w := doPublish(t, router, `{}`, map[string]string{"baggage": "foo=bar, sd-routing-key=sbx-7"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "sbx-7", producer.headers["signadot-routing-key"])
	assert.Equal(t, "foo=bar,sd-routing-key=sbx-7", producer.headers["baggage"])
}

func TestPublishExplicitHeaderWinsOverBaggage(t *testing.T) {
	producer := &capturingProducer{}
	router := newTestRouter(producer, "")

	doPublish(t, router, `{}`, map[string]string{
		"x-signadot-routing-key": "sbx-1",
		"baggage":                "sd-routing-key=sbx-2",
	})

	assert.Equal(t, "sbx-1", producer.headers["signadot-routing-key"])
	assert.Equal(t, "sd-routing-key=sbx-1", producer.headers["baggage"])
}

func TestPublishUsesSandboxEnvKey(t *testing.T) {
	producer := &capturingProducer{}
	router := newTestRouter(producer, "sbx-env")

	w := doPublish(t, router, `{}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "sbx-env", producer.headers["signadot-routing-key"])
}

func TestPublishEmptyBody(t *testing.T) {
	producer := &capturingProducer{}
	router := newTestRouter(producer, "")

	w := doPublish(t, router, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(producer.body, &payload))
	assert.Equal(t, "baseline", payload["routing_key"])
}

func TestPublishProducerFailure(t *testing.T) {
	producer := &capturingProducer{err: assert.AnError}
	router := newTestRouter(producer, "")

	w := doPublish(t, router, `{}`, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestEventsWithoutStore(t *testing.T) {
	router := newTestRouter(&capturingProducer{}, "")

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatsWithoutStore(t *testing.T) {
	router := newTestRouter(&capturingProducer{}, "")

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&capturingProducer{}, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
