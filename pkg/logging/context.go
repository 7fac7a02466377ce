package logging

import (
	"context"
)

type contextKey string

const (
	TraceIDKey      contextKey = "trace_id"
	RequestIDKey    contextKey = "request_id"
	InspectionIDKey contextKey = "inspection_id"
	LotCodeKey      contextKey = "lot_code"
	ServiceNameKey  contextKey = "service_name"
)

// orderedKeys fixes the order fields are emitted in.
var orderedKeys = []contextKey{TraceIDKey, RequestIDKey, InspectionIDKey, LotCodeKey, ServiceNameKey}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithInspectionID(ctx context.Context, inspectionID string) context.Context {
	return context.WithValue(ctx, InspectionIDKey, inspectionID)
}

func WithLotCode(ctx context.Context, lotCode string) context.Context {
	return context.WithValue(ctx, LotCodeKey, lotCode)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

func GetTraceID(ctx context.Context) string {
	return stringValue(ctx, TraceIDKey)
}

func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

func GetInspectionID(ctx context.Context) string {
	return stringValue(ctx, InspectionIDKey)
}

func GetLotCode(ctx context.Context) string {
	return stringValue(ctx, LotCodeKey)
}

func GetServiceName(ctx context.Context) string {
	return stringValue(ctx, ServiceNameKey)
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 2*len(orderedKeys))
	for _, key := range orderedKeys {
		if value := stringValue(ctx, key); value != "" {
			fields = append(fields, string(key), value)
		}
	}
	return fields
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if value, ok := ctx.Value(key).(string); ok {
		return value
	}
	return ""
}
