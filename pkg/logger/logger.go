package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewJSON builds the production JSON logger. Unknown levels fall back to info.
func NewJSON(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// ParseLevel accepts zap level names case-insensitively; "warning" is an
// alias for warn.
func ParseLevel(lvl string) zapcore.Level {
	s := strings.ToLower(strings.TrimSpace(lvl))
	if s == "warning" {
		s = "warn"
	}
	l, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// WithService tags every entry with the service name and release.
func WithService(log *zap.Logger, name, release string) *zap.Logger {
	return log.With(zap.String("service", name), zap.String("release", release))
}
