package http

import (
	"context"
	"log/slog"

	"github.com/example/alarm-clock/internal/logging"
)

type contextKey string

const alarmIDContextKey contextKey = "alarm_id"

// ContextWithAlarmID injects the alarm identifier resolved from the request path.
func ContextWithAlarmID(ctx context.Context, alarmID string) context.Context {
	return context.WithValue(ctx, alarmIDContextKey, alarmID)
}

// AlarmIDFromContext extracts an alarm identifier previously associated with the context.
func AlarmIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(alarmIDContextKey).(string)
	return id, ok
}

// ContextWithLogger associates a request scoped logger with the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger, or nil when absent.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
