package config

import (
	"log/slog"
	"strings"
	"time"
)

type AppConfig struct {
	Port           int           `yaml:"port" env-default:"8080"`
	DefaultTimeout time.Duration `yaml:"default_timeout" env-default:"5s"`
	LogLevel       string        `yaml:"log_level" env-default:"info"`
	PrettyLogs     bool          `yaml:"pretty_logs"`
}

func (c AppConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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
