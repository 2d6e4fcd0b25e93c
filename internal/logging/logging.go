// Package logging builds the slog loggers shared by the plugin, the HTTP
// adapter and the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/me/smkplugin/internal/config"
)

// New creates a logger from the log section of the configuration.
// Output goes to stderr; stdout is reserved for command output.
func New(cfg config.LogConfig) *slog.Logger {
	return NewLoggerWithWriter(ParseLevel(cfg.Level), cfg.Format, os.Stderr)
}

// NewLoggerWithWriter creates a logger writing to the given writer.
//
// format: "text" (human-readable) or "json" (structured)
func NewLoggerWithWriter(level slog.Level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
