package objectmap

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with objectmap-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRecord adds a record position field to the logger.
func (l *Logger) WithRecord(i int) *Logger {
	return &Logger{
		Logger: l.Logger.With("record", i),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogFieldWarning logs a tolerated field conversion failure.
func (l *Logger) LogFieldWarning(op string, w FieldWarning) {
	l.Warn("cannot convert field",
		"op", op,
		"field", w.Field,
		"record", w.Record,
		"error", w.Err,
	)
}

// LogSimilarities logs a similarity scoring operation.
func (l *Logger) LogSimilarities(count int, err error) {
	if err != nil {
		l.Error("similarity scoring failed",
			"count", count,
			"error", err,
		)
	} else {
		l.Debug("similarity scoring completed",
			"count", count,
		)
	}
}

// LogSerialize logs a serialization operation.
func (l *Logger) LogSerialize(count, warnings int, err error) {
	if err != nil {
		l.Error("serialization failed",
			"count", count,
			"error", err,
		)
	} else if warnings > 0 {
		l.Warn("serialization completed with degraded fields",
			"count", count,
			"warnings", warnings,
		)
	} else {
		l.Debug("serialization completed",
			"count", count,
		)
	}
}

// LogLoad logs a deserialization operation.
func (l *Logger) LogLoad(count, warnings int, err error) {
	if err != nil {
		l.Error("load failed",
			"count", count,
			"error", err,
		)
	} else if warnings > 0 {
		l.Warn("load completed with degraded fields",
			"count", count,
			"warnings", warnings,
		)
	} else {
		l.Debug("load completed",
			"count", count,
		)
	}
}
