package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	defaultLogger  *slog.Logger
	criticalLogger *slog.Logger
)

// Options configures the default and critical loggers.
type Options struct {
	Env          string
	Level        string
	Format       string
	CriticalFile string
}

func Init(env string) {
	_ = Configure(Options{Env: env})
}

// Configure installs the process-wide logger. Critical records are additionally
// written as JSON to CriticalFile, or to stderr when no file is set.
func Configure(opts Options) error {
	level := parseLevel(opts.Level, opts.Env)
	format := opts.Format
	if format == "" {
		if opts.Env == "production" {
			format = "json"
		} else {
			format = "text"
		}
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)

	var out io.Writer = os.Stderr
	if opts.CriticalFile != "" {
		f, err := os.OpenFile(opts.CriticalFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
		if err != nil {
			criticalLogger = slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("channel", "critical")
			return err
		}
		out = f
	}
	criticalLogger = slog.New(slog.NewJSONHandler(out, nil)).With("channel", "critical")
	return nil
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}

// L is shorthand for LoggerWrapper.
func L() *slog.Logger {
	return LoggerWrapper()
}

// Critical returns the secondary logger that receives escalated records.
func Critical() *slog.Logger {
	if criticalLogger == nil {
		Init("development")
	}
	return criticalLogger
}

func parseLevel(level, env string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if env == "production" {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
