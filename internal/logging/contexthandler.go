package logging

import (
	"context"
	"log/slog"
)

// ContextProvider returns the attributes describing the current mission state.
type ContextProvider func() []slog.Attr

// ContextHandler appends the provider's mission and step attributes to every record.
// A key the record or a With call already set wins, so a log line that names its own
// step is not stamped twice.
type ContextHandler struct {
	next     slog.Handler
	provider ContextProvider
	preset   map[string]struct{}
}

// NewContextHandler wraps next with the provider's attributes.
func NewContextHandler(next slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{next: next, provider: provider}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider == nil {
		return h.next.Handle(ctx, r)
	}
	attrs := h.provider()
	if len(attrs) == 0 {
		return h.next.Handle(ctx, r)
	}

	own := make(map[string]struct{}, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		own[a.Key] = struct{}{}
		return true
	})
	for _, a := range attrs {
		if _, ok := own[a.Key]; ok {
			continue
		}
		if _, ok := h.preset[a.Key]; ok {
			continue
		}
		r.AddAttrs(a)
	}
	return h.next.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	preset := make(map[string]struct{}, len(h.preset)+len(attrs))
	for k := range h.preset {
		preset[k] = struct{}{}
	}
	for _, a := range attrs {
		preset[a.Key] = struct{}{}
	}
	return &ContextHandler{next: h.next.WithAttrs(attrs), provider: h.provider, preset: preset}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	// Attributes set before the group live outside it and cannot clash.
	return &ContextHandler{next: h.next.WithGroup(name), provider: h.provider}
}
