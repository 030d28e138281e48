package graphlocal

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with graph-specific helpers.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithVertices adds a vertex count field to the logger.
func (l *Logger) WithVertices(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("vertices", n),
	}
}

// LogBuild logs a graph construction.
func (l *Logger) LogBuild(ctx context.Context, records, n, m int, weighted bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "graph build failed",
			"records", records,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "graph built",
		"records", records,
		"vertices", n,
		"entries", m,
		"weighted", weighted,
	)
}

// LogExport logs a shared memory export.
func (l *Logger) LogExport(ctx context.Context, handle string, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "shared export failed",
			"bytes", bytes,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "graph exported to shared memory",
		"handle", handle,
		"bytes", bytes,
	)
}

// LogImport logs the attachment of a shared view.
func (l *Logger) LogImport(ctx context.Context, handle string, generation uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "shared import failed",
			"handle", handle,
			"generation", generation,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "shared view attached",
		"handle", handle,
		"generation", generation,
	)
}

// LogLargestComponent logs the reduction of a disconnected graph.
// Use WithVertices to attach the size of the input graph.
func (l *Logger) LogLargestComponent(ctx context.Context, components, kept int) {
	l.WarnContext(ctx, "graph has multiple components, using the largest",
		"components", components,
		"kept", kept,
	)
}
