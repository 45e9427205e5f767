// Package log provides slog plumbing shared by the module's commands.
// Handlers here redact credential-bearing attributes and duplicate
// records across sinks; AuditFile is a size-capped rotating sink for
// call audit trails.
package log

import (
	"context"
	"log/slog"
	"strings"
)

// sensitiveKeys lists key substrings whose values are redacted, compared
// case-insensitively. Session identifiers are included: holding one grants
// the same transaction scope as the credentials that opened it.
var sensitiveKeys = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"auth",
	"cred",
	"session",
}

const redactedPlaceholder = "[REDACTED]"

// RedactingHandler is a slog.Handler that redacts sensitive attribute
// values before delegating to the wrapped handler.
type RedactingHandler struct {
	next slog.Handler
}

// NewRedactingHandler creates a new RedactingHandler.
func NewRedactingHandler(next slog.Handler) *RedactingHandler {
	return &RedactingHandler{next: next}
}

// Enabled implements slog.Handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler. It redacts sensitive attributes before
// passing the record on.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	var attrs []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, redactAttr(a))
		return true
	})

	newRecord := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	newRecord.AddAttrs(attrs...)

	return h.next.Handle(ctx, newRecord)
}

// WithAttrs implements slog.Handler.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(redacted)}
}

// WithGroup implements slog.Handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		members := make([]any, len(attrs))
		for i, attr := range attrs {
			members[i] = redactAttr(attr)
		}
		return slog.Group(a.Key, members...)
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, redactedPlaceholder)
	}

	return a
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sens := range sensitiveKeys {
		if strings.Contains(lower, sens) {
			return true
		}
	}
	return false
}
