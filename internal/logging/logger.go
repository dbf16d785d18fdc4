package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates a JSON slog logger for the named component. An invalid level
// falls back to info.
func New(level, component string) *slog.Logger {
	return newWithWriter(os.Stdout, level, component)
}

func newWithWriter(w io.Writer, level, component string) *slog.Logger {
	lvl := new(slog.LevelVar)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.Set(slog.LevelInfo)
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	if component != "" {
		logger = logger.With("component", component)
	}
	return logger
}

// Discard returns a logger that drops all output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
