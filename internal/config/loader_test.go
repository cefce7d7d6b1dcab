package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBrokerPort(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "plain port", raw: "5672", want: 5672},
		{name: "k8s service link", raw: "tcp://10.0.0.12:5672", want: 5672},
		{name: "k8s service link custom port", raw: "tcp://10.0.0.12:5673", want: 5673},
		{name: "garbage", raw: "not-a-port", wantErr: true},
		{name: "tcp prefix without port", raw: "tcp://10.0.0.12", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port, err := ParseBrokerPort(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, port)
		})
	}
}

func validTestConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Broker: BrokerConfig{
			Type:     "rabbitmq",
			RabbitMQ: RabbitMQConfig{Host: "localhost"},
		},
		RouteServer: RouteServerConfig{URL: "http://routeserver.signadot.svc:7778"},
	}
}

func TestValidateStatic(t *testing.T) {
	assert.NoError(t, ValidateStatic(validTestConfig()))
}

func TestValidateStaticRejectsBadPort(t *testing.T) {
	cfg := validTestConfig()
	cfg.Server.Port = 0
	assert.Error(t, ValidateStatic(cfg))
}

func TestValidateStaticRejectsUnknownBroker(t *testing.T) {
	cfg := validTestConfig()
	cfg.Broker.Type = "zeromq"

	err := ValidateStatic(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown broker type")
}

func TestValidateStaticRequiresRabbitMQHost(t *testing.T) {
	cfg := validTestConfig()
	cfg.Broker.RabbitMQ.Host = ""
	assert.Error(t, ValidateStatic(cfg))
}

func TestValidateStaticRequiresKafkaTopic(t *testing.T) {
	cfg := validTestConfig()
	cfg.Broker.Type = "kafka"
	cfg.Broker.Kafka = KafkaConfig{Brokers: []string{"localhost:9092"}}
	assert.Error(t, ValidateStatic(cfg))
}

// A sandbox instance never talks to the route server, so its URL may be
// left out.
func TestValidateStaticRouteServerOptionalForSandbox(t *testing.T) {
	cfg := validTestConfig()
	cfg.RouteServer.URL = ""
	cfg.Sandbox.RoutingKey = "sbx-42"
	assert.NoError(t, ValidateStatic(cfg))
}

func TestValidateStaticRouteServerRequiredForBaseline(t *testing.T) {
	cfg := validTestConfig()
	cfg.RouteServer.URL = ""
	assert.Error(t, ValidateStatic(cfg))
}
