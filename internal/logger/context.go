package logger

import (
	"context"

	"go.uber.org/zap"
)

type requestLoggerKey struct{}

// ContextWithLogger attaches the request logger to ctx.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, requestLoggerKey{}, logger)
}

// With returns ctx with its request logger extended by fields. Without a
// request logger ctx is returned as is.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	l, ok := ctx.Value(requestLoggerKey{}).(*zap.Logger)
	if !ok {
		return ctx
	}
	return ContextWithLogger(ctx, l.With(fields...))
}

// FromContext returns the request logger, or a nop logger outside a request.
func FromContext(ctx context.Context) *zap.Logger {
	return FromContextOr(ctx, zap.NewNop())
}

// FromContextOr returns the request logger, or fallback outside a request.
func FromContextOr(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(requestLoggerKey{}).(*zap.Logger); ok {
		return l
	}
	return fallback
}
