// Package logger wraps zap's sugared logger with the level names used in config.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log levels accepted by New.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Logger wraps zap's SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

// defaultLevel is used when an unknown level string is provided.
const defaultLevel = zapcore.InfoLevel

// ParseLevel converts a textual level to a zapcore.Level.
// The second return value is false for unknown strings.
func ParseLevel(levelStr string) (zapcore.Level, bool) {
	switch levelStr {
	case DebugLevel:
		return zapcore.DebugLevel, true
	case InfoLevel:
		return zapcore.InfoLevel, true
	case WarnLevel:
		return zapcore.WarnLevel, true
	case ErrorLevel:
		return zapcore.ErrorLevel, true
	default:
		return defaultLevel, false
	}
}

// newConsoleCore builds a console core targeting stderr.
func newConsoleCore(level zapcore.Level) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoder := zapcore.NewConsoleEncoder(cfg)
	ws := zapcore.Lock(os.Stderr)
	return zapcore.NewCore(encoder, ws, zap.NewAtomicLevelAt(level))
}

// New constructs a console logger at the given level.
func New(levelStr string) *Logger {
	level, _ := ParseLevel(levelStr)
	return &Logger{SugaredLogger: zap.New(newConsoleCore(level)).Sugar()}
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Named returns a child logger with the given name segment.
func (l *Logger) Named(name string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.Named(name)}
}
