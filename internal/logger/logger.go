// Package logger holds the process-wide structured logger.
//
// Console output goes to stderr through charmbracelet/log so it does not mix
// with the relayed command's stdout. An optional log file receives JSON
// records and is rotated by lumberjack.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// L is the global logger instance. It's initialized to discard all output by default.
// Call Init() to enable logging.
var L *slog.Logger = slog.New(slog.DiscardHandler)

const (
	prefix        = "regrun"
	maxSizeMB     = 5
	maxBackups    = 3
	retentionDays = 30
)

// Options configures the logger initialization.
type Options struct {
	Level   string    // debug, info, warn, error. Default: warn
	File    string    // optional log file path; rotated by size
	Console io.Writer // console destination. Default: os.Stderr
}

// Init configures logging. Call from main() before any log calls.
func Init(opts Options) error {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return err
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	handlers := []slog.Handler{
		charmlog.NewWithOptions(console, charmlog.Options{
			Prefix: prefix,
			Level:  level,
		}),
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return err
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     retentionDays,
		}
		handlers = append(handlers, slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: slogLevel(level)}))
	}

	if len(handlers) == 1 {
		L = slog.New(handlers[0])
	} else {
		L = slog.New(fanout(handlers))
	}
	return nil
}

// Reset restores the discarding logger.
func Reset() {
	L = slog.New(slog.DiscardHandler)
}

func parseLevel(s string) (charmlog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return charmlog.WarnLevel, nil
	}
	level, err := charmlog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", s)
	}
	return level, nil
}

func slogLevel(l charmlog.Level) slog.Level {
	switch {
	case l <= charmlog.DebugLevel:
		return slog.LevelDebug
	case l <= charmlog.InfoLevel:
		return slog.LevelInfo
	case l <= charmlog.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
