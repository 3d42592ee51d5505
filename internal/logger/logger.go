// Package logger provides structured logging configuration for the application.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// LogFormat represents the output format for logs
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format (production default)
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in human-readable text format (development default)
	FormatText LogFormat = "text"
)

// New creates a new structured logger based on environment configuration.
// It reads LOG_LEVEL and LOG_FORMAT from environment variables.
//
// LOG_LEVEL options: debug, info, warn, error (default: info)
// LOG_FORMAT options: json, text (default: json)
func New() *slog.Logger {
	level := getLogLevel()

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	}

	var handler slog.Handler
	switch getLogFormat() {
	case FormatText:
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func getLogLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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

func getLogFormat() LogFormat {
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "text" {
		return FormatText
	}
	return FormatJSON
}

// SetDefault sets the given logger as the default slog logger
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
