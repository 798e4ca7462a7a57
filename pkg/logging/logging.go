// Package logging provides the process-wide structured logger. Output format
// and verbosity come from the environment:
//
//   - DIGEST_LOG_FORMAT: "json" (default) or "text"
//   - DIGEST_LOG_LEVEL: debug|info|warn|error (default info)
//
// Debug level additionally records source locations, which helps when
// chasing which engine or store produced a log line.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	once          sync.Once
	defaultLogger *slog.Logger
)

// Logger returns the shared logger, building it from the environment on
// first use.
func Logger() *slog.Logger {
	once.Do(func() {
		if defaultLogger == nil {
			defaultLogger = newLogger(os.Stdout)
		}
	})
	return defaultLogger
}

// SetLogger replaces the shared logger; call it before the first Logger use.
// Mainly useful for tests that want to capture output.
func SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	defaultLogger = l
	once.Do(func() {})
}

// WithComponent returns the shared logger tagged with a component field.
func WithComponent(component string) *slog.Logger {
	return Logger().With("component", component)
}

func newLogger(w *os.File) *slog.Logger {
	level := parseLevel(os.Getenv("DIGEST_LOG_LEVEL"))
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv("DIGEST_LOG_FORMAT"), "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("service", "digest")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
