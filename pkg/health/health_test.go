package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name string
	err  error
}

func (c *stubChecker) Name() string                    { return c.name }
func (c *stubChecker) Check(ctx context.Context) error { return c.err }

func TestRegistryAllHealthy(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(&stubChecker{name: "broker"})
	registry.Register(&stubChecker{name: "redis"})

	result := registry.Check(context.Background())

	assert.Equal(t, StatusHealthy, result.Status)
	require.Len(t, result.Checks, 2)
	assert.Equal(t, StatusHealthy, result.Checks["broker"].Status)
	assert.Equal(t, StatusHealthy, result.Checks["redis"].Status)
}

func TestRegistryOneUnhealthy(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(&stubChecker{name: "broker"})
	registry.Register(&stubChecker{name: "redis", err: errors.New("connection refused")})

	result := registry.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, StatusHealthy, result.Checks["broker"].Status)
	assert.Equal(t, StatusUnhealthy, result.Checks["redis"].Status)
	assert.Equal(t, "connection refused", result.Checks["redis"].Message)
}

func TestRegistryEmpty(t *testing.T) {
	result := NewCheckerRegistry().Check(context.Background())
	assert.Equal(t, StatusHealthy, result.Status)
	assert.Empty(t, result.Checks)
}

func TestAMQPCheckerNilConnection(t *testing.T) {
	checker := NewAMQPChecker(nil)
	assert.Error(t, checker.Check(context.Background()))
}
