// Package logger provides a slog handler that colours terminal output by level.
// Warnings are yellow, errors red, and storage persistence messages green.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// ColorHandler wraps a slog.TextHandler and wraps each line in an ANSI colour.
type ColorHandler struct {
	inner slog.Handler
	w     io.Writer
	mu    *sync.Mutex
}

// NewColorHandler creates a ColorHandler writing to w.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	return &ColorHandler{
		inner: slog.NewTextHandler(w, opts),
		w:     w,
		mu:    &sync.Mutex{},
	}
}

// NewDefaultLogger returns a colour logger on stderr at level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// New returns a logger on stderr for a level name (debug, info, warn, error)
// and a format (color, text or json). Unknown levels fall back to info.
func New(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	default:
		return slog.New(NewColorHandler(os.Stderr, opts))
	}
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (h *ColorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ColorHandler) Handle(ctx context.Context, r slog.Record) error {
	color := colorFor(r)

	h.mu.Lock()
	defer h.mu.Unlock()

	if color == "" {
		return h.inner.Handle(ctx, r)
	}
	if _, err := io.WriteString(h.w, color); err != nil {
		return err
	}
	err := h.inner.Handle(ctx, r)
	if _, werr := io.WriteString(h.w, colorReset); err == nil {
		err = werr
	}
	return err
}

func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ColorHandler{inner: h.inner.WithAttrs(attrs), w: h.w, mu: h.mu}
}

func (h *ColorHandler) WithGroup(name string) slog.Handler {
	return &ColorHandler{inner: h.inner.WithGroup(name), w: h.w, mu: h.mu}
}

func colorFor(r slog.Record) string {
	switch {
	case r.Level >= slog.LevelError:
		return colorRed
	case r.Level >= slog.LevelWarn:
		return colorYellow
	case isPersistence(r.Message):
		return colorGreen
	default:
		return ""
	}
}

func isPersistence(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "persist") || strings.Contains(m, "saved graph") || strings.Contains(m, "deleted graph")
}
