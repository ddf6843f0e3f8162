package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ogonki/streak-api/internal/config"
)

const consoleTimeFormat = "15:04:05.000"

// New creates the process logger: JSON or console output on stdout, tagged
// with service and environment. Debug level also records the caller.
func New(cfg *config.Config) zerolog.Logger {
	return build(cfg, os.Stdout)
}

func build(cfg *config.Config, out io.Writer) zerolog.Logger {
	level := parseLevel(cfg.LogLevel)

	ctx := zerolog.New(writerFor(cfg.LogFormat, out)).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment)
	if level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

func writerFor(format string, out io.Writer) io.Writer {
	if strings.EqualFold(format, "json") {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: consoleTimeFormat}
}

// parseLevel falls back to info for empty or unknown names.
func parseLevel(raw string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
