package services

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines common logging interface for all services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ZapLogger adapts a zap SugaredLogger to Logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

func NewZapLogger(base *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: base.Sugar()}
}

func (l *ZapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *ZapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *ZapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *ZapLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Named returns a child logger tagged with the given component name.
func (l *ZapLogger) Named(name string) *ZapLogger {
	return &ZapLogger{sugar: l.sugar.Named(name)}
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

// NoOpLogger discards everything (for testing)
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}

// NewLogger builds the process logger for env ("production", "development",
// "test"). Production writes JSON, everything else a console format.
// LOG_LEVEL overrides the default level.
func NewLogger(service, env string) (*ZapLogger, error) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "test":
		return NewZapLogger(zap.NewNop()), nil
	case "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		level, err := zapcore.ParseLevel(strings.ToLower(lvl))
		if err == nil {
			cfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	base, err := cfg.Build(zap.Fields(zap.String("service", service)))
	if err != nil {
		return nil, err
	}
	return NewZapLogger(base), nil
}

// MaskUsername keeps the first characters of a username for log lines.
func MaskUsername(username string) string {
	runes := []rune(username)
	if len(runes) <= 2 {
		return "****"
	}
	keep := 4
	if len(runes) < keep+2 {
		keep = len(runes) / 2
	}
	return string(runes[:keep]) + "****"
}
