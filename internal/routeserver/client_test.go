package routeserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mqsieve/internal/config"
)

func testClientConfig(url string) config.RouteServerConfig {
	return config.RouteServerConfig{
		URL:                   url,
		RequestTimeoutSeconds: 2,
		Baseline: config.BaselineConfig{
			Kind:      "Deployment",
			Namespace: "rabbitmq-demo",
			Name:      "consumer",
		},
	}
}

func TestClientRoutingKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/workloads/routing-rules", r.URL.Path)
		assert.Equal(t, "Deployment", r.URL.Query().Get("baselineKind"))
		assert.Equal(t, "rabbitmq-demo", r.URL.Query().Get("baselineNamespace"))
		assert.Equal(t, "consumer", r.URL.Query().Get("baselineName"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"routingRules":[{"routingKey":"sbx-1"},{"routingKey":""},{"routingKey":"sbx-2"},{}]}`))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))

	keys, err := client.RoutingKeys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sbx-1", "sbx-2"}, keys)
}

func TestClientRoutingKeysEmptyRules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"routingRules":[]}`))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))

	keys, err := client.RoutingKeys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestClientRoutingKeysNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))

	_, err := client.RoutingKeys(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClientRoutingKeysMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClient(testClientConfig(srv.URL))

	_, err := client.RoutingKeys(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClientRoutingKeysServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(testClientConfig(srv.URL))

	_, err := client.RoutingKeys(context.Background())
	require.Error(t, err)
}

func TestClientDefaultsBaselineKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Deployment", r.URL.Query().Get("baselineKind"))
		w.Write([]byte(`{"routingRules":[]}`))
	}))
	defer srv.Close()

	cfg := testClientConfig(srv.URL)
	cfg.Baseline.Kind = ""
	client := NewClient(cfg)

	_, err := client.RoutingKeys(context.Background())
	require.NoError(t, err)
}
