package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yungbote/studynotion-backend/internal/platform/envutil"
)

// Logger is a sugared zap logger whose key/value pairs pass through the
// redactor before they reach an encoder.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
	red           *redactor
}

// New builds a logger for the given mode. "prod"/"production" emit JSON,
// "test" only emits warnings and above, anything else is the development console.
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.DisableStacktrace = true
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	if lvl := envutil.String("LOG_LEVEL", ""); lvl != "" {
		var parsed zapcore.Level
		if err := parsed.UnmarshalText([]byte(lvl)); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(parsed)
		}
	}
	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zl.Sugar(), red: redactorFromEnv()}, nil
}

// Nop discards everything. Used by tests and tools that only need the type.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar(), red: &redactor{}}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, kv ...interface{}) {
	l.SugaredLogger.Debugw(msg, l.red.apply(kv)...)
}

func (l *Logger) Info(msg string, kv ...interface{}) {
	l.SugaredLogger.Infow(msg, l.red.apply(kv)...)
}

func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.SugaredLogger.Warnw(msg, l.red.apply(kv)...)
}

func (l *Logger) Error(msg string, kv ...interface{}) {
	l.SugaredLogger.Errorw(msg, l.red.apply(kv)...)
}

func (l *Logger) Fatal(msg string, kv ...interface{}) {
	l.SugaredLogger.Fatalw(msg, l.red.apply(kv)...)
}

func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.red.apply(kv)...), red: l.red}
}
