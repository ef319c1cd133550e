package config

import (
	"io"
	"log/slog"
	"strings"

	"dpki-lite/go-core/internal/platform/privacylog"
)

// NewLogger builds the process logger. Output always passes through the
// privacy filter.
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(cfg.LogFormat), "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(privacylog.WrapHandler(h))
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn
	}
	return lvl
}
