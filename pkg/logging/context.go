package logging

import (
	"context"
)

const (
	ServiceNameKey = "service_name"
	SandboxNameKey = "sandbox_name"
	RoutingKeyKey  = "routing_key"
	MessageIDKey   = "message_id"
)

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

func WithSandboxName(ctx context.Context, sandboxName string) context.Context {
	return context.WithValue(ctx, SandboxNameKey, sandboxName)
}

func WithRoutingKey(ctx context.Context, routingKey string) context.Context {
	return context.WithValue(ctx, RoutingKeyKey, routingKey)
}

func WithMessageID(ctx context.Context, messageID string) context.Context {
	return context.WithValue(ctx, MessageIDKey, messageID)
}

func GetServiceName(ctx context.Context) string {
	if serviceName, ok := ctx.Value(ServiceNameKey).(string); ok {
		return serviceName
	}
	return ""
}

func GetSandboxName(ctx context.Context) string {
	if sandboxName, ok := ctx.Value(SandboxNameKey).(string); ok {
		return sandboxName
	}
	return ""
}

func GetRoutingKey(ctx context.Context) string {
	if routingKey, ok := ctx.Value(RoutingKeyKey).(string); ok {
		return routingKey
	}
	return ""
}

func GetMessageID(ctx context.Context) string {
	if messageID, ok := ctx.Value(MessageIDKey).(string); ok {
		return messageID
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 8)

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, "service_name", serviceName)
	}

	if sandboxName := GetSandboxName(ctx); sandboxName != "" {
		fields = append(fields, "sandbox_name", sandboxName)
	}

	if routingKey := GetRoutingKey(ctx); routingKey != "" {
		fields = append(fields, "routing_key", routingKey)
	}

	if messageID := GetMessageID(ctx); messageID != "" {
		fields = append(fields, "message_id", messageID)
	}

	return fields
}
