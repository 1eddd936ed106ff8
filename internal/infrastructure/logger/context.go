package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey      contextKey = "logger"
	requestIDKey   contextKey = "request_id"
	cartSessionKey contextKey = "cart_session"
	adminUserKey   contextKey = "admin_user"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID in ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithCartSession stores the shopper cart session in ctx.
func WithCartSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, cartSessionKey, session)
}

// WithAdminUser stores the authenticated admin username in ctx.
func WithAdminUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, adminUserKey, username)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetCartSession retrieves the cart session from context
func GetCartSession(ctx context.Context) string {
	s, _ := ctx.Value(cartSessionKey).(string)
	return s
}

// GetAdminUser retrieves the admin username from context
func GetAdminUser(ctx context.Context) string {
	u, _ := ctx.Value(adminUserKey).(string)
	return u
}

// L returns the context logger enriched with trace_id, span_id,
// request_id, cart_session and admin_user when they are present.
//
//	logger.L(ctx).Warn("order confirmation not sent", zap.Error(err))
func L(ctx context.Context) *zap.Logger {
	return enrich(ctx, FromContext(ctx))
}

// For enriches an explicitly injected logger with the context fields.
func For(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return enrich(ctx, base)
}

func enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	var fields []zap.Field
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if s := GetCartSession(ctx); s != "" {
		fields = append(fields, zap.String("cart_session", s))
	}
	if u := GetAdminUser(ctx); u != "" {
		fields = append(fields, zap.String("admin_user", u))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
