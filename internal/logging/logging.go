// Package logging builds the slog logger used by every command.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text, json, pretty
	// File, when set, also receives JSON logs through a rotating writer.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// New creates a configured slog.Logger writing to stderr.
func New(cfg Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a configured slog.Logger with a custom console writer.
func NewWithWriter(cfg Config, w io.Writer) *slog.Logger {
	level := ParseLevel(cfg.Level)
	handler := consoleHandler(cfg.Format, level, w)
	if cfg.File != "" {
		file := slog.NewJSONHandler(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}, &slog.HandlerOptions{Level: level})
		handler = &fanout{handlers: []slog.Handler{handler, file}}
	}
	return slog.New(handler)
}

func consoleHandler(format string, level slog.Level, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(format) {
	case "json":
		return slog.NewJSONHandler(w, opts)
	case "pretty":
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
			Prefix:          "blogctl",
		})
	default:
		return slog.NewTextHandler(w, opts)
	}
}

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

// fanout writes each record to several handlers, such as the console and a log file.
type fanout struct {
	handlers []slog.Handler
}

func (h *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (h *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &fanout{handlers: handlers}
}

func (h *fanout) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &fanout{handlers: handlers}
}
