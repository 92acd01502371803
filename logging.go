package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tonimelisma/syncpaste/internal/config"
)

// Log file rotation settings.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 5
)

// logLevel resolves the log level. The config file provides the baseline;
// --verbose and --quiet override it because CLI flags always win.
func logLevel(cfg *config.Resolved) slog.Level {
	level := slog.LevelInfo

	if cfg != nil {
		switch cfg.Logging.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return level
}

// buildLogger creates the process logger: a console handler on stderr plus,
// when log_file is set, a rotating JSON file handler. The returned function
// closes the log file.
func buildLogger(cfg *config.Resolved) (*slog.Logger, func() error) {
	level := logLevel(cfg)

	format := "auto"
	if cfg != nil {
		format = cfg.Logging.LogFormat
	}

	console := consoleHandler(os.Stderr, format, level)

	if cfg == nil || cfg.Logging.LogFile == "" {
		return slog.New(console), func() error { return nil }
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.Logging.LogFile,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     cfg.Logging.LogRetentionDays,
		Compress:   true,
	}

	// The file always records debug detail regardless of console level.
	file := slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: slog.LevelDebug})

	return slog.New(newMultiHandler(console, file)), rotator.Close
}

// consoleHandler picks the stderr handler for the configured format. "auto"
// means colorized tint output on a terminal, plain text otherwise.
func consoleHandler(f *os.File, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "json":
		return slog.NewJSONHandler(f, opts)
	case "text":
		return slog.NewTextHandler(f, opts)
	}

	if isTerminal(f) {
		return tint.NewHandler(f, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	}

	return slog.NewTextHandler(f, opts)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// multiHandler fans records out to several handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func newMultiHandler(handlers ...slog.Handler) *multiHandler {
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error

	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			errs = append(errs, handler.Handle(ctx, r.Clone()))
		}
	}

	return errors.Join(errs...)
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}

	return newMultiHandler(handlers...)
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}

	return newMultiHandler(handlers...)
}
