// Package logx builds the slog logger shared by the binaries, with optional
// size-based file rotation.
package logx

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level   string // debug | info | warn | error
	Format  string // json | text
	File    string // kosong = stdout saja
	Service string
}

func New(o Options) (*slog.Logger, error) {
	var out io.Writer = os.Stdout
	if o.File != "" {
		if err := os.MkdirAll(filepath.Dir(o.File), 0o755); err != nil {
			return nil, err
		}
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
			Compress:   true,
		})
	}
	l := slog.New(handler(out, o))
	if o.Service != "" {
		l = l.With(slog.String("service", o.Service))
	}
	return l, nil
}

func handler(w io.Writer, o Options) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(o.Level)}
	if strings.EqualFold(o.Format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// Discard is used by tests and by components constructed without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
