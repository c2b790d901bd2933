package l10n

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger is the leveled logging contract used by the registry and localization.
// It mirrors github.com/goliatone/go-logger so hosts can plug it in directly.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider exposes named loggers
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is the optional extension for persistent structured fields
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}

// withFields attaches fields when the logger supports it
func withFields(logger Logger, fields map[string]any) Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fl, ok := logger.(FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fl.WithFields(copied)
	}
	return logger
}

type noopLogger struct{}

// NoOpLogger discards every entry
func NoOpLogger() Logger { return noopLogger{} }

func (noopLogger) Trace(string, ...any)                {}
func (noopLogger) Debug(string, ...any)                {}
func (noopLogger) Info(string, ...any)                 {}
func (noopLogger) Warn(string, ...any)                 {}
func (noopLogger) Error(string, ...any)                {}
func (noopLogger) Fatal(string, ...any)                {}
func (n noopLogger) WithContext(context.Context) Logger { return n }
func (n noopLogger) WithFields(map[string]any) Logger   { return n }

// LoggerConfig selects the go-logger level and output format
type LoggerConfig struct {
	Level     string
	Format    string
	AddSource bool
}

// GoLoggerProvider backs LoggerProvider with go-logger
type GoLoggerProvider struct {
	root *glog.BaseLogger
}

var _ LoggerProvider = &GoLoggerProvider{}

func NewGoLoggerProvider(cfg LoggerConfig) (*GoLoggerProvider, error) {
	options := []glog.Option{}

	if level := normalizeLevel(cfg.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("l10n: unsupported log format %q", cfg.Format)
	}

	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	return &GoLoggerProvider{root: glog.NewLogger(options...)}, nil
}

func (p *GoLoggerProvider) GetLogger(name string) Logger {
	if p == nil {
		return NoOpLogger()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return wrapGoLogger(p.root)
	}
	return wrapGoLogger(p.root.GetLogger(name))
}

func wrapGoLogger(inner glog.Logger) Logger {
	if inner == nil {
		return NoOpLogger()
	}
	return &goLogger{inner: inner}
}

type goLogger struct {
	inner glog.Logger
}

func (l *goLogger) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *goLogger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *goLogger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *goLogger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *goLogger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *goLogger) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

func (l *goLogger) WithFields(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	if with, ok := l.inner.(glog.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return wrapGoLogger(with.WithFields(copied))
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	if with, ok := l.inner.(interface{ With(...any) *glog.BaseLogger }); ok {
		return wrapGoLogger(with.With(args...))
	}
	return l
}

func (l *goLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}
	return wrapGoLogger(l.inner.WithContext(ctx))
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	case "fatal":
		return glog.Fatal
	default:
		return ""
	}
}
