// Package logging builds the slog loggers used by txtgrid.
//
// The grid owns the terminal while it runs, so interactive sessions log to a
// file or nowhere; the headless commands log to stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a logger writing to w at the given level.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OpenFile returns a logger appending to path, plus the file to close when
// the session ends. An empty path yields a discarding logger and a no-op
// closer.
func OpenFile(path, level, format string) (*slog.Logger, io.Closer, error) {
	return Open(path, nil, level, format)
}

// Open is OpenFile with a fallback writer used when path is empty. A nil
// fallback discards.
func Open(path string, fallback io.Writer, level, format string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		if fallback == nil {
			return Discard(), nopCloser{}, nil
		}
		return New(fallback, level, format), nopCloser{}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level, format), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel converts a string log level to slog.Level.
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

// ValidLevel reports whether level is one ParseLevel recognizes by name.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}
