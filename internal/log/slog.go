package log

import (
	"context"
	"log/slog"

	"github.com/apex/log"
)

// SlogHandler is a slog.Handler that forwards records to an apex logger, so
// library code logging through slog ends up in the CLI's log output.
type SlogHandler struct {
	logger *log.Logger
	fields log.Fields
	group  string
}

// NewSlogLogger returns a slog.Logger writing through logger. A nil logger
// means the apex package-level logger configured by InitLogger.
func NewSlogLogger(logger *log.Logger) *slog.Logger {
	if logger == nil {
		logger, _ = log.Log.(*log.Logger)
	}
	if logger == nil {
		logger = &log.Logger{Handler: &CustomHandler{}, Level: log.ErrorLevel}
	}
	return slog.New(&SlogHandler{logger: logger, fields: log.Fields{}})
}

// Enabled implements slog.Handler.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return apexLevel(level) >= h.logger.Level
}

// Handle implements slog.Handler.
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(log.Fields, len(h.fields)+r.NumAttrs())
	for k, v := range h.fields {
		fields[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(fields, h.group, a)
		return true
	})

	entry := h.logger.WithFields(fields)
	switch apexLevel(r.Level) {
	case log.DebugLevel:
		entry.Debug(r.Message)
	case log.InfoLevel:
		entry.Info(r.Message)
	case log.WarnLevel:
		entry.Warn(r.Message)
	default:
		entry.Error(r.Message)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make(log.Fields, len(h.fields)+len(attrs))
	for k, v := range h.fields {
		fields[k] = v
	}
	for _, a := range attrs {
		addAttr(fields, h.group, a)
	}
	return &SlogHandler{logger: h.logger, fields: fields, group: h.group}
}

// WithGroup implements slog.Handler.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SlogHandler{logger: h.logger, fields: h.fields, group: h.group + name + "."}
}

func addAttr(fields log.Fields, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range v.Group() {
			addAttr(fields, prefix, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	fields[prefix+a.Key] = v.Any()
}

func apexLevel(level slog.Level) log.Level {
	switch {
	case level < slog.LevelInfo:
		return log.DebugLevel
	case level < slog.LevelWarn:
		return log.InfoLevel
	case level < slog.LevelError:
		return log.WarnLevel
	default:
		return log.ErrorLevel
	}
}

var _ slog.Handler = (*SlogHandler)(nil)
