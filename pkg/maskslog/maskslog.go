// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package maskslog provides a slog.Handler which masks sensitive
// attribute values, e.g. user email addresses, before they are written.
package maskslog

import (
	"context"
	"log/slog"
	"strings"
)

type options struct {
	attrs    map[string]func(slog.Attr) slog.Attr
	messages []func(string) string
}

// Option helps configure the Handler.
type Option interface {
	applyOption(*options)
}

type optionFunc func(*options)

func (f optionFunc) applyOption(opts *options) {
	f(opts)
}

// Message registers a function for masking slog.Record messages.
func Message(f func(string) string) Option {
	return optionFunc(func(o *options) {
		o.messages = append(o.messages, f)
	})
}

// Attr registers a function for masking any slog.Attr with the given key.
// Attributes nested inside groups are matched as well.
func Attr(key string, f func(slog.Attr) slog.Attr) Option {
	return optionFunc(func(o *options) {
		o.attrs[key] = f
	})
}

// AnonymousStringAttr converts any slog.Attr into the anonymized
// string, "****", regardless of the original value type.
func AnonymousStringAttr(a slog.Attr) slog.Attr {
	return slog.String(a.Key, "****")
}

// EmailAttr keeps the first character of the local part and the domain
// of an email address, e.g. "john@x.com" becomes "j***@x.com". Values
// which don't look like an email address are fully anonymized.
func EmailAttr(a slog.Attr) slog.Attr {
	s := a.Value.String()
	local, domain, ok := strings.Cut(s, "@")
	if !ok || len(local) == 0 {
		return AnonymousStringAttr(a)
	}
	return slog.String(a.Key, local[:1]+"***@"+domain)
}

// Handler is an slog.Handler.
type Handler struct {
	slog slog.Handler

	attrs    map[string]func(slog.Attr) slog.Attr
	messages []func(string) string
}

// NewHandler returns a new Handler.
func NewHandler(h slog.Handler, opts ...Option) *Handler {
	o := &options{
		attrs: make(map[string]func(slog.Attr) slog.Attr),
	}
	for _, opt := range opts {
		opt.applyOption(o)
	}
	return &Handler{
		slog:     h,
		attrs:    o.attrs,
		messages: o.messages,
	}
}

// Enabled implements the slog.Handler interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	msg := record.Message
	for _, f := range h.messages {
		msg = f(msg)
	}

	r := slog.NewRecord(record.Time, record.Level, msg, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(h.mask(a))
		return true
	})
	return h.slog.Handle(ctx, r)
}

func (h *Handler) mask(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	if f, ok := h.attrs[a.Key]; ok {
		return f(a)
	}
	if a.Value.Kind() != slog.KindGroup {
		return a
	}

	group := a.Value.Group()
	masked := make([]any, len(group))
	for i, ga := range group {
		masked[i] = h.mask(ga)
	}
	return slog.Group(a.Key, masked...)
}

// WithAttrs implements the slog.Handler interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.mask(a)
	}
	return &Handler{
		slog:     h.slog.WithAttrs(masked),
		attrs:    h.attrs,
		messages: h.messages,
	}
}

// WithGroup implements the slog.Handler interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		slog:     h.slog.WithGroup(name),
		attrs:    h.attrs,
		messages: h.messages,
	}
}
