// Package log is a thin context-aware wrapper around a process-wide zap logger.
package log

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Field = zap.Field

type Config struct {
	Level       string
	Development bool
}

var global atomic.Pointer[zap.Logger]

func init() {
	global.Store(zap.NewNop())
}

// New builds a zap logger. Development mode writes human-readable console
// output; otherwise JSON.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zc.Build()
}

// SetGlobal replaces the process-wide logger. A nil logger disables logging.
func SetGlobal(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	global.Store(l)
}

// L returns the process-wide logger.
func L() *zap.Logger {
	return global.Load()
}

func Debug(ctx context.Context, msg string, fields ...Field) {
	L().Debug(msg, withContext(ctx, fields)...)
}

func Info(ctx context.Context, msg string, fields ...Field) {
	L().Info(msg, withContext(ctx, fields)...)
}

func Warn(ctx context.Context, msg string, fields ...Field) {
	L().Warn(msg, withContext(ctx, fields)...)
}

func Error(ctx context.Context, msg string, fields ...Field) {
	L().Error(msg, withContext(ctx, fields)...)
}

func String(key, val string) Field { return zap.String(key, val) }

func Int(key string, val int) Field { return zap.Int(key, val) }

func Int64(key string, val int64) Field { return zap.Int64(key, val) }

func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }

// Cause attaches err under the "error" key.
func Cause(err error) Field { return zap.Error(err) }

// withContext appends the request id, when the request carries one.
func withContext(ctx context.Context, fields []Field) []Field {
	if ctx == nil {
		return fields
	}
	if id := middleware.GetReqID(ctx); id != "" {
		return append(fields, zap.String("request_id", id))
	}
	return fields
}
