package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"repo-rag/internal/config"
)

type contextKey string

const componentKey contextKey = "component"

// Setup installs the process-wide slog handler: text at debug level in
// development, JSON at info level otherwise.
func Setup(cfg config.Config) {
	slog.SetDefault(slog.New(NewHandler(os.Stdout, cfg)))
}

func NewHandler(w io.Writer, cfg config.Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
	}

	if cfg.IsProduction() {
		return &ComponentHandler{Handler: slog.NewJSONHandler(w, opts)}
	}
	return &ComponentHandler{Handler: slog.NewTextHandler(w, opts)}
}

// WithComponent tags every log record emitted with ctx with a component name.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// ComponentHandler adds the context's component name to each record.
type ComponentHandler struct {
	slog.Handler
}

func (h *ComponentHandler) Handle(ctx context.Context, r slog.Record) error {
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		r.AddAttrs(slog.String("component", component))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ComponentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ComponentHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ComponentHandler) WithGroup(name string) slog.Handler {
	return &ComponentHandler{Handler: h.Handler.WithGroup(name)}
}

// Truncate shortens s to at most maxLen bytes, appending "..." when cut.
// The cut never splits a UTF-8 sequence.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
