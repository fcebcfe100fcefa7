package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvLogLevel  = "CONSULT_LOG_LEVEL"
	EnvLogFormat = "CONSULT_LOG_FORMAT"
)

// LogConfig selects the slog handler. Level is one of debug, info, warn or
// error; format is text or json.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LogConfig) Finalize() error {
	c.Level = withDefault(c.Level, "info")
	c.Format = withDefault(c.Format, "text")
	mergeString(&c.Level, os.Getenv(EnvLogLevel))
	mergeString(&c.Format, os.Getenv(EnvLogFormat))

	c.Level = strings.ToLower(c.Level)
	c.Format = strings.ToLower(c.Format)

	if _, err := c.level(); err != nil {
		return err
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *LogConfig) Merge(overlay *LogConfig) {
	mergeString(&c.Level, overlay.Level)
	mergeString(&c.Format, overlay.Format)
}

// NewLogger builds the service logger writing to w.
func (c *LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := c.level()
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c *LogConfig) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return l, fmt.Errorf("invalid level %q", c.Level)
	}
	return l, nil
}
