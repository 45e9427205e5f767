package log

import (
	"context"
	"errors"
	"log/slog"
)

// FanoutHandler duplicates records to several handlers, letting one
// logger feed the console and an audit file at the same time.
type FanoutHandler []slog.Handler

// Enabled implements slog.Handler. A record is enabled when any sink
// wants it.
func (h FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range h {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle implements slog.Handler. The record is cloned per sink because
// handlers are allowed to retain it.
func (h FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, s := range h {
		if !s.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs implements slog.Handler.
func (h FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(FanoutHandler, len(h))
	for i, s := range h {
		next[i] = s.WithAttrs(attrs)
	}
	return next
}

// WithGroup implements slog.Handler.
func (h FanoutHandler) WithGroup(name string) slog.Handler {
	next := make(FanoutHandler, len(h))
	for i, s := range h {
		next[i] = s.WithGroup(name)
	}
	return next
}
