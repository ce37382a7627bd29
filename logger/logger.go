package logger

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is the process-wide base logger
	Log = zap.NewNop()
)

// RequestIDKey is the key used to store request ID in gin and request contexts
const RequestIDKey = "request_id"

type (
	ctxKey       struct{}
	requestIDCtx struct{}
)

// Initialize sets up the logger with the specified environment
func Initialize(env string) {
	InitializeWithWriter(env, nil)
}

// InitializeWithWriter sets up the logger and tees it to cloudWatchWriter when non-nil.
func InitializeWithWriter(env string, cloudWatchWriter io.Writer) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if cloudWatchWriter == nil {
		l, err := config.Build()
		if err != nil {
			fmt.Printf("Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
		Log = l
		return
	}

	level := zap.NewAtomicLevelAt(config.Level.Level())

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(config.EncoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	// CloudWatch always receives JSON without terminal colors
	cwEncoderCfg := config.EncoderConfig
	cwEncoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cwCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(cwEncoderCfg),
		zapcore.AddSync(cloudWatchWriter),
		level,
	)

	Log = zap.New(zapcore.NewTee(consoleCore, cwCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// WithLogger returns a copy of ctx carrying l.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger, or the base logger when none is attached.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return Log
}

// RequestID extracts the request ID stored alongside the request-scoped logger.
func RequestID(ctx context.Context) string {
	if ctx != nil {
		if id, ok := ctx.Value(requestIDCtx{}).(string); ok {
			return id
		}
	}
	return "unknown"
}

// WithRequestID stores requestID in ctx and attaches a child logger carrying it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	ctx = context.WithValue(ctx, requestIDCtx{}, requestID)
	return WithLogger(ctx, Log.With(zap.String(RequestIDKey, requestID)))
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Log.Sync()
}
