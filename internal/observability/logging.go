// Package observability provides logging and tracing for the application.
package observability

import (
	"context"
	"log/slog"
)

// RepoLogger emits structured log lines for repository mutations. Reads are
// traced but not logged; writes are rare enough to log individually.
type RepoLogger struct {
	table  string
	logger *slog.Logger
}

// NewRepoLogger returns a RepoLogger bound to one table. The base logger
// should be context-aware so request IDs flow through.
func NewRepoLogger(table string, base *slog.Logger) *RepoLogger {
	return &RepoLogger{table: table, logger: base}
}

// Write logs a completed repository mutation.
func (l *RepoLogger) Write(ctx context.Context, operation string, fields map[string]interface{}) {
	attrs := []any{
		slog.String("table", l.table),
		slog.String("operation", operation),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.InfoContext(ctx, "repository write", attrs...)
}

// Error logs a failed repository operation.
func (l *RepoLogger) Error(ctx context.Context, err error, operation string) {
	l.logger.ErrorContext(ctx, "repository error",
		slog.String("table", l.table),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// WSLogger emits structured log lines for websocket hub events.
type WSLogger struct {
	hub    string
	logger *slog.Logger
}

// NewWSLogger returns a WSLogger bound to one hub.
func NewWSLogger(hub string, base *slog.Logger) *WSLogger {
	return &WSLogger{hub: hub, logger: base}
}

// Connect logs a subscriber joining the hub. userID is zero for anonymous
// feed subscribers.
func (l *WSLogger) Connect(userID uint) {
	l.logger.Info("websocket connected",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
	)
}

// Disconnect logs a subscriber leaving the hub.
func (l *WSLogger) Disconnect(userID uint, reason string) {
	l.logger.Info("websocket disconnected",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("reason", reason),
	)
}

// Error logs a websocket failure for one subscriber.
func (l *WSLogger) Error(userID uint, err error, event string) {
	l.logger.Error("websocket error",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("event", event),
		slog.String("error", err.Error()),
	)
}
