package logger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler writes flat single-line records in a stable key order.
// Groups become dotted key prefixes.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	groups []string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = slices.Clone(defaultKeyOrder)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errors.New("logger: writer not initialized")
	}
	isJSON := h.cfg.format == formatJSON
	prefix := strings.Join(h.groups, ".")

	e := newEntry(r, isJSON)
	for _, a := range h.attrs {
		e.add(prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		e.add(prefix, a)
		return true
	})
	e.addContext(ctx)
	e.compactRID(isJSON)
	e.setDefault("event", r.Message)
	e.setDefault("event", "unknown")
	e.setDefault("component", "app")
	e.normalizeEnums()
	e.prune()
	e.redact()

	line, err := h.cfg.format.encode(e, h.cfg.keyOrder)
	if err != nil {
		return err
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(slices.Clone(h.attrs), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(slices.Clone(h.groups), name)
	return &clone
}
