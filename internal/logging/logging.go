// Package logging configures the process-wide slog loggers: human-readable
// text on stderr, plus an optional rotated JSON file log.
package logging

import (
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"mongovault/internal/conf"
)

// Init sets up the default logger. Progress is narrated on stderr so stdout
// stays clean for command output; when cfg.File is set a structured JSON
// copy goes to a rotated log file.
func Init(cfg *conf.LogConfig, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}

	if cfg != nil && cfg.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   true,
		}
		handlers = append(handlers, slog.NewJSONHandler(fileWriter, &slog.HandlerOptions{Level: level}))
	}

	if len(handlers) == 1 {
		slog.SetDefault(slog.New(handlers[0]))
		return
	}
	slog.SetDefault(slog.New(&teeHandler{handlers: handlers}))
}
