package unimailer

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// newLogger builds a slog logger from cfg. An empty Output yields a logger
// that discards everything. The returned closer is non-nil when a log file
// was opened.
func newLogger(cfg LoggingConfig) (*slog.Logger, io.Closer, error) {
	if cfg.Output == "" {
		return slog.New(slog.DiscardHandler), nil, nil
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		w      io.Writer
		closer io.Closer
	)
	switch cfg.Output {
	case "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w, closer = f, f
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler), closer, nil
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}
