package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// CorrelationIDKey is the log attribute carrying the per-request correlation id.
const CorrelationIDKey = "correlation_id"

// New builds the process logger. Format is "json" (default) or "text".
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithCorrelationID scopes a logger to one request.
func WithCorrelationID(logger *slog.Logger, correlationID string) *slog.Logger {
	if correlationID == "" {
		return logger
	}
	return logger.With(CorrelationIDKey, correlationID)
}

// Fatal logs err and exits.
func Fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
