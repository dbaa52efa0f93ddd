package log

import (
	"context"
	"log/slog"
	"strings"
)

// Redacted replaces the value of a sensitive attribute.
const Redacted = "[REDACTED]"

// DefaultRedactKeys are attribute keys whose values never reach the output.
var DefaultRedactKeys = []string{
	"password",
	"new_password",
	"newpassword",
	"otp",
	"code",
	"token",
	"access_token",
	"secret",
	"otp_hash",
	"authorization",
}

// RedactHandler wraps a slog.Handler and masks attributes whose key matches
// one of the configured keys, case insensitive, at any group depth.
type RedactHandler struct {
	next slog.Handler
	keys map[string]struct{}
}

func NewRedactHandler(next slog.Handler, keys ...string) *RedactHandler {
	if len(keys) == 0 {
		keys = DefaultRedactKeys
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[strings.ToLower(k)] = struct{}{}
	}
	return &RedactHandler{next: next, keys: set}
}

func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redact(a)
	}
	return &RedactHandler{next: h.next.WithAttrs(redacted), keys: h.keys}
}

func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{next: h.next.WithGroup(name), keys: h.keys}
}

func (h *RedactHandler) redact(a slog.Attr) slog.Attr {
	if _, ok := h.keys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}
	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		return slog.Attr{Key: a.Key, Value: v}
	}
	group := v.Group()
	attrs := make([]any, len(group))
	for i, ga := range group {
		attrs[i] = h.redact(ga)
	}
	return slog.Group(a.Key, attrs...)
}
