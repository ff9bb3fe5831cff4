package logging

import (
	"context"
	"log/slog"
)

// CapturingHandler copies every record into a session's Console trace and
// passes it on to the underlying handler.
type CapturingHandler struct {
	underlying slog.Handler
	console    *Console
	sessionID  string
	attrs      []slog.Attr
	// group prefixes attribute keys added after WithGroup, dot separated.
	group string
}

// NewCapturingHandler creates a CapturingHandler for sessionID.
func NewCapturingHandler(underlying slog.Handler, console *Console, sessionID string) *CapturingHandler {
	return &CapturingHandler{
		underlying: underlying,
		console:    console,
		sessionID:  sessionID,
	}
}

// Enabled reports true for every level so the console sees debug records
// even when the underlying handler filters them. The underlying handler
// still filters its own output in Handle.
func (h *CapturingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

// Handle captures the record and passes it through.
func (h *CapturingHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := LogEntry{
		Time:       r.Time,
		Level:      r.Level.String(),
		Message:    r.Message,
		Attributes: make(map[string]any, r.NumAttrs()+len(h.attrs)),
	}
	for _, attr := range h.attrs {
		entry.Attributes[attr.Key] = resolveValue(attr.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		entry.Attributes[h.group+a.Key] = resolveValue(a.Value)
		return true
	})
	h.console.Add(h.sessionID, entry)

	if !h.underlying.Enabled(ctx, r.Level) {
		return nil
	}
	return h.underlying.Handle(ctx, r)
}

// WithAttrs returns a CapturingHandler, not the underlying handler, so that
// capture survives logger.With chains.
func (h *CapturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	newAttrs = append(newAttrs, h.attrs...)
	for _, a := range attrs {
		newAttrs = append(newAttrs, slog.Attr{Key: h.group + a.Key, Value: a.Value})
	}

	return &CapturingHandler{
		underlying: h.underlying.WithAttrs(attrs),
		console:    h.console,
		sessionID:  h.sessionID,
		attrs:      newAttrs,
		group:      h.group,
	}
}

// WithGroup returns a CapturingHandler that prefixes later keys with name.
func (h *CapturingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &CapturingHandler{
		underlying: h.underlying.WithGroup(name),
		console:    h.console,
		sessionID:  h.sessionID,
		attrs:      h.attrs,
		group:      h.group + name + ".",
	}
}

// resolveValue converts a slog.Value to a JSON-serializable value.
func resolveValue(v slog.Value) any {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time()
	case slog.KindAny:
		value := v.Any()
		if err, ok := value.(error); ok {
			return err.Error()
		}
		return value
	case slog.KindGroup:
		attrs := v.Group()
		group := make(map[string]any, len(attrs))
		for _, attr := range attrs {
			group[attr.Key] = resolveValue(attr.Value)
		}
		return group
	default:
		return v.Any()
	}
}
