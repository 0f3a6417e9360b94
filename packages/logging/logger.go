// Package logging builds the zap logger mcbench uses for diagnostics.
// Diagnostics go to stderr so stdout carries only benchmark progress.
package logging

import (
	"context"

	"go.uber.org/zap"
)

// DefaultLevel keeps routine runs quiet; per-request failures still surface.
const DefaultLevel = "warn"

type ctxKey struct{}

// NewLogger returns a development (console) or production (JSON) logger at
// the given level.
func NewLogger(production bool, level string) (*zap.Logger, error) {
	var conf zap.Config
	if production {
		conf = zap.NewProductionConfig()
	} else {
		conf = zap.NewDevelopmentConfig()
		conf.DisableStacktrace = true
	}

	if level == "" {
		level = DefaultLevel
	}
	if err := conf.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	conf.OutputPaths = []string{"stderr"}
	conf.ErrorOutputPaths = []string{"stderr"}

	return conf.Build()
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or zap's global logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return zap.L()
	}
	if logger, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.L()
}
