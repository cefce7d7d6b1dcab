package routeserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mqsieve/internal/config"
	"mqsieve/internal/constants"
)

// RoutingKeyLister is what the poller needs from the route server: the
// routing keys currently bound to live sandboxes of the baseline workload.
type RoutingKeyLister interface {
	RoutingKeys(ctx context.Context) ([]string, error)
}

type routingRule struct {
	RoutingKey string `json:"routingKey"`
}

type routingRulesResponse struct {
	RoutingRules []routingRule `json:"routingRules"`
}

type Client struct {
	baseURL  string
	baseline config.BaselineConfig
	client   *http.Client
}

func NewClient(cfg config.RouteServerConfig) *Client {
	timeout := constants.DefaultRequestTimeout
	if cfg.RequestTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	}

	baseline := cfg.Baseline
	if baseline.Kind == "" {
		baseline.Kind = constants.BaselineDefaultKind
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.URL, "/"),
		baseline: baseline,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) RoutingKeys(ctx context.Context) ([]string, error) {
	query := url.Values{}
	query.Set("baselineKind", c.baseline.Kind)
	query.Set("baselineNamespace", c.baseline.Namespace)
	query.Set("baselineName", c.baseline.Name)

	endpoint := c.baseURL + constants.RouteRulesPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("route server request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		return nil, fmt.Errorf("route server returned status: %d", resp.StatusCode)
	}

	var body routingRulesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode route server response: %w", err)
	}

	keys := make([]string, 0, len(body.RoutingRules))
	for _, rule := range body.RoutingRules {
		if rule.RoutingKey == "" {
			continue
		}
		keys = append(keys, rule.RoutingKey)
	}

	return keys, nil
}
