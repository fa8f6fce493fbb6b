package dedupgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with dedupgo-specific context.
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

// WithMethod adds a strategy method name field to the logger.
func (l *Logger) WithMethod(method string) *Logger {
	return &Logger{
		Logger: l.Logger.With("method", method),
	}
}

// WithChunk adds a chunk index field to the logger.
func (l *Logger) WithChunk(index int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("chunk", index),
	}
}

// LogChunk logs the outcome of one processed chunk.
func (l *Logger) LogChunk(ctx context.Context, index int64, seen, kept, malformed int) {
	l.DebugContext(ctx, "chunk processed",
		"chunk", index,
		"seen", seen,
		"kept", kept,
		"removed", seen-kept-malformed,
		"malformed", malformed,
	)
}

// LogRun logs the outcome of a whole run.
func (l *Logger) LogRun(ctx context.Context, stats DedupStats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"chunks", stats.ChunksProcessed,
			"seen", stats.ExamplesSeen,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "run completed",
			"chunks", stats.ChunksProcessed,
			"seen", stats.ExamplesSeen,
			"removed", stats.DuplicatesRemoved,
			"malformed", stats.MalformedRecords,
		)
	}
}
