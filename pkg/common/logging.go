// Copyright (c) 2025 BoostDesk. All Rights Reserved.

package common

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/sirupsen/logrus"
)

// InterceptorLogger adapts a logrus logger to the gRPC logging interceptors.
func InterceptorLogger(l logrus.FieldLogger) logging.Logger {
	return logging.LoggerFunc(func(_ context.Context, lvl logging.Level, msg string, fields ...any) {
		f := make(map[string]any, len(fields)/2)
		i := logging.Fields(fields).Iterator()
		for i.Next() {
			k, v := i.At()
			f[k] = v
		}
		entry := l.WithFields(f)

		switch lvl {
		case logging.LevelDebug:
			entry.Debug(msg)
		case logging.LevelInfo:
			entry.Info(msg)
		case logging.LevelWarn:
			entry.Warn(msg)
		case logging.LevelError:
			entry.Error(msg)
		default:
			panic(fmt.Sprintf("unknown level %v", lvl))
		}
	})
}

// ParseLogLevel parses a logrus level name, falling back to info.
func ParseLogLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// SlogHandler forwards log/slog records to logrus so packages that take a
// *slog.Logger share the service's formatter, level and output.
type SlogHandler struct {
	entry *logrus.Entry
	group string
}

// NewSlogHandler returns a handler writing to l.
func NewSlogHandler(l *logrus.Logger) *SlogHandler {
	return &SlogHandler{entry: logrus.NewEntry(l)}
}

func (h *SlogHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	return h.entry.Logger.IsLevelEnabled(logrusLevel(lvl))
}

func (h *SlogHandler) Handle(ctx context.Context, r slog.Record) error {
	fields := make(logrus.Fields, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		addAttr(fields, h.group, a)
		return true
	})

	entry := h.entry.WithContext(ctx).WithFields(fields)
	if !r.Time.IsZero() {
		entry = entry.WithTime(r.Time)
	}
	entry.Log(logrusLevel(r.Level), r.Message)
	return nil
}

func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make(logrus.Fields, len(attrs))
	for _, a := range attrs {
		addAttr(fields, h.group, a)
	}
	return &SlogHandler{entry: h.entry.WithFields(fields), group: h.group}
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SlogHandler{entry: h.entry, group: h.group + name + "."}
}

// addAttr flattens groups into dotted keys.
func addAttr(fields logrus.Fields, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			addAttr(fields, prefix, ga)
		}
		return
	}
	fields[prefix+a.Key] = a.Value.Any()
}

func logrusLevel(lvl slog.Level) logrus.Level {
	switch {
	case lvl >= slog.LevelError:
		return logrus.ErrorLevel
	case lvl >= slog.LevelWarn:
		return logrus.WarnLevel
	case lvl >= slog.LevelInfo:
		return logrus.InfoLevel
	}
	return logrus.DebugLevel
}
