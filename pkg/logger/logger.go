// Package logger provides the process-wide structured logger built on
// log/slog.
//
// Services tag a logger once per operation and carry it in the context so
// nested calls log with the same attributes:
//
//	ctx = logger.With(ctx, "user_id", userID)
//	logger.WithCtx(ctx).Info("checkout started", "lines", n)
//	// → time=... level=INFO msg="checkout started" user_id=42 lines=3
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/bazaar/config"
)

var L *slog.Logger

func init() {
	L = New(config.AppEnv(), os.Stdout)
	slog.SetDefault(L)
}

// New builds a logger for env: JSON at INFO for production, text at DEBUG
// everywhere else.
func New(env string, w io.Writer) *slog.Logger {
	switch env {
	case "production", "prod":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// SetOutput swaps the base logger; used by the CLI's --quiet flag and by tests.
func SetOutput(l *slog.Logger) {
	L = l
	slog.SetDefault(l)
}

type ctxKey struct{}

// WithCtx returns the logger stored in ctx, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return L
}

// InjectLogger stores log in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// With returns a context whose logger carries args in addition to any
// attributes already attached.
func With(ctx context.Context, args ...any) context.Context {
	return InjectLogger(ctx, WithCtx(ctx).With(args...))
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
