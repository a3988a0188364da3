package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces secret material in log output.
const RedactedPlaceholder = "***"

// sensitiveKeyPattern matches attribute keys whose values are never safe to
// log regardless of content.
var sensitiveKeyPattern = regexp.MustCompile(`(?i)(password|credential|secret|token)`)

// SecretSource returns the secrets that must never appear in log output.
// It is consulted per record, so secrets acquired after logger setup (the
// sudo password is prompted for later) are still covered.
type SecretSource func() []string

// StaticSecrets adapts a fixed secret list into a SecretSource
func StaticSecrets(secrets ...string) SecretSource {
	return func() []string { return secrets }
}

// RedactingHandler is a decorator that removes credential material from
// records before forwarding them to the underlying handler. It redacts both
// attributes with sensitive keys and any literal occurrence of a secret
// inside messages or string values.
type RedactingHandler struct {
	handler slog.Handler
	source  SecretSource
}

// NewRedactingHandler creates a redacting handler wrapping handler. A nil
// source means only key-based redaction applies.
func NewRedactingHandler(handler slog.Handler, source SecretSource) *RedactingHandler {
	return &RedactingHandler{handler: handler, source: source}
}

// Enabled reports whether the underlying handler handles the given level
func (r *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return r.handler.Enabled(ctx, level)
}

// Handle redacts the record and forwards it
func (r *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, r.redactText(record.Message), record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(r.redactAttr(attr))
		return true
	})
	return r.handler.Handle(ctx, clean)
}

// WithAttrs returns a new RedactingHandler with the given attributes
func (r *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		redacted = append(redacted, r.redactAttr(attr))
	}
	return &RedactingHandler{handler: r.handler.WithAttrs(redacted), source: r.source}
}

// WithGroup returns a new RedactingHandler with the given group name
func (r *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: r.handler.WithGroup(name), source: r.source}
}

// redactAttr redacts a single attribute, recursing into groups
func (r *RedactingHandler) redactAttr(attr slog.Attr) slog.Attr {
	if sensitiveKeyPattern.MatchString(attr.Key) {
		return slog.Attr{Key: attr.Key, Value: slog.StringValue(RedactedPlaceholder)}
	}

	value := attr.Value
	switch value.Kind() {
	case slog.KindString:
		redacted := r.redactText(value.String())
		if redacted != value.String() {
			return slog.Attr{Key: attr.Key, Value: slog.StringValue(redacted)}
		}
	case slog.KindGroup:
		group := value.Group()
		redacted := make([]slog.Attr, 0, len(group))
		for _, member := range group {
			redacted = append(redacted, r.redactAttr(member))
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(redacted...)}
	}

	return attr
}

// redactText removes every literal occurrence of a current secret
func (r *RedactingHandler) redactText(text string) string {
	if r.source == nil {
		return text
	}
	for _, secret := range r.source() {
		if secret == "" {
			continue
		}
		text = strings.ReplaceAll(text, secret, RedactedPlaceholder)
	}
	return text
}
