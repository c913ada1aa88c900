// Package logger builds the process-wide zap logger.
package logger

import (
	"go.uber.org/zap"
)

type Logger struct {
	Log *zap.Logger
}

// New returns a logger that discards everything until Init is called.
func New() *Logger {
	return &Logger{
		Log: zap.NewNop(),
	}
}

// Init switches to the production JSON config at the given level.
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	zl, err := cfg.Build()
	if err != nil {
		return err
	}

	l.Log = zl
	return nil
}

// Named returns a child logger for one component.
func (l *Logger) Named(component string) *zap.Logger {
	return l.Log.Named(component)
}

func (l *Logger) Sync() {
	_ = l.Log.Sync()
}
