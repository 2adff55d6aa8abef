// Package logging builds the CLI logger and holds the canonical field helpers
// used across the module, so log keys stay consistent between packages.
package logging

import (
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLogLevel names the environment variable holding the default log level.
const EnvLogLevel = "MD2SITE_LOG_LEVEL"

const defaultLogLevel = "info"

// ParseLevel converts a level name ("debug", "info", "warn", "error") into a
// zap level. Unknown or empty names fall back to info.
func ParseLevel(name string) zapcore.Level {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil || name == "" {
		_ = level.UnmarshalText([]byte(defaultLogLevel))
	}
	return level.Level()
}

// New constructs a human-readable console logger writing to w.
// Timestamps are omitted: build logs are read interactively.
func New(w io.Writer, level zapcore.Level) *zap.Logger {
	encoderCfg := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		NameKey:        "logger",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core)
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Stage is the pipeline stage a record belongs to.
func Stage(name string) zap.Field { return zap.String("stage", name) }

// Path is a slash-separated path relative to the tree being processed.
func Path(rel string) zap.Field { return zap.String("path", rel) }

// Count is a number of processed items.
func Count(n int) zap.Field { return zap.Int("count", n) }

// Duration is the elapsed time of an operation.
func Duration(d time.Duration) zap.Field { return zap.Duration("duration", d) }

// Target is the destination of a link.
func Target(ref string) zap.Field { return zap.String("target", ref) }
