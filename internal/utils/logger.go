package utils

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a JSON logger for prod and a console logger otherwise.
// level overrides the default level when non-empty.
func NewLogger(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	if level = strings.TrimSpace(level); level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

type loggerKey struct{}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// Logger returns the context logger, or a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}

// LogEvent writes one module/action event. Keep payloads summarized.
func LogEvent(ctx context.Context, module, action, message string, fields ...zap.Field) {
	Logger(ctx).Info(message, append([]zap.Field{
		zap.String("module", strings.ToUpper(module)),
		zap.String("action", action),
	}, fields...)...)
}

// LogFailure is LogEvent at error level.
func LogFailure(ctx context.Context, module, action string, err error, fields ...zap.Field) {
	Logger(ctx).Error(action+" failed", append([]zap.Field{
		zap.String("module", strings.ToUpper(module)),
		zap.String("action", action),
		zap.Error(err),
	}, fields...)...)
}
