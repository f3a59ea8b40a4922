package frame

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

var discardLogger = slog.New(slog.DiscardHandler)

// LoggingContext returns a copy of ctx carrying logger. Site.Render and
// anything else handed the context will log through it.
func LoggingContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger stored by LoggingContext, or one that discards
// everything if there isn't one.
func Logger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return discardLogger
}
