// Package logging provides structured logging with zap.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // json, console
	OutputPath string `yaml:"output"` // stdout, stderr, or file path
}

// New builds a logger from cfg. An unparsable level falls back to info.
// The returned level can be changed at runtime.
func New(cfg Config) (*zap.Logger, zap.AtomicLevel, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var config zap.Config
	if cfg.Format == "console" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	atomicLevel := zap.NewAtomicLevelAt(level)
	config.Level = atomicLevel
	if cfg.OutputPath != "" {
		config.OutputPaths = []string{cfg.OutputPath}
	}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, atomicLevel, err
	}
	return logger, atomicLevel, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// SetLevel changes level to the named level. Unknown names are ignored.
func SetLevel(level zap.AtomicLevel, name string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return
	}
	level.SetLevel(l)
}

// Field helpers for common fields.

func Path(p string) zap.Field {
	return zap.String("path", p)
}

func NodeID(id string) zap.Field {
	return zap.String("node_id", id)
}

func Op(op string) zap.Field {
	return zap.String("op", op)
}
