// Package logging adapts zap to the service Logger interface.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"immunizetrack/internal/core"
)

var _ core.Logger = (*Logger)(nil)

// Config selects the log level and encoding.
type Config struct {
	Level   string `yaml:"level"`
	Verbose bool   `yaml:"verbose"`
	// Development switches to the console encoder.
	Development bool `yaml:"development"`
}

// Logger forwards key/value pairs to a zap SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a logger from zap's production config. Verbose forces debug.
func New(cfg Config) (*Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	if cfg.Verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	base, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return Wrap(base), nil
}

// Wrap adapts an existing zap logger.
func Wrap(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{sugar: l.Sugar()}
}

// Named returns a child logger scoped to name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{sugar: l.sugar.Named(name)}
}

// Zap returns the underlying logger.
func (l *Logger) Zap() *zap.Logger { return l.sugar.Desugar() }

func (l *Logger) Debug(msg string, kv ...any) { l.sugar.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.sugar.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.sugar.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.sugar.Errorw(msg, kv...) }

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.sugar.Sync() }
