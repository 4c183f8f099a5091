// Package wlog provides the structured logging helpers shared across the
// analysis engine, persistence layer, and CLI, grounded on the logging
// setup in the codeNERD example's cmd/nerd/main.go: a process-wide
// *zap.Logger configured once at startup and handed down through
// constructors rather than accessed as a global.
package wlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps *zap.Logger with the couple of conveniences every caller in
// this module needs: a document-correlation field and a no-op fallback so
// code doesn't have to nil-check a logger that was never configured.
type Logger struct {
	z *zap.Logger
}

// New builds a Logger writing structured (JSON) output at info level. debug
// switches to debug level with human-readable console encoding, the same way
// --verbose does in the codeNERD CLI it's grounded on.
func New(debug bool) (Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	z, err := cfg.Build()
	if err != nil {
		return Logger{}, err
	}
	return Logger{z: z}, nil
}

// Noop returns a Logger that discards everything, for tests and for code
// paths run before a real Logger has been constructed.
func Noop() Logger {
	return Logger{z: zap.NewNop()}
}

// Sync flushes any buffered log entries. Callers should defer it in main.
func (l Logger) Sync() error {
	if l.z == nil {
		return nil
	}
	return l.z.Sync()
}

// WithDocument returns a Logger that tags every subsequent entry with the
// given document source ID, for correlating analysis-engine log lines back
// to the document that produced them.
func (l Logger) WithDocument(sourceID string) Logger {
	if l.z == nil {
		return l
	}
	return Logger{z: l.z.With(zap.String("source_id", sourceID))}
}

// With returns a Logger with additional structured fields attached to
// every subsequent entry.
func (l Logger) With(fields ...zap.Field) Logger {
	if l.z == nil {
		return l
	}
	return Logger{z: l.z.With(fields...)}
}

func (l Logger) Debug(msg string, fields ...zap.Field) {
	if l.z != nil {
		l.z.Debug(msg, fields...)
	}
}

func (l Logger) Info(msg string, fields ...zap.Field) {
	if l.z != nil {
		l.z.Info(msg, fields...)
	}
}

func (l Logger) Warn(msg string, fields ...zap.Field) {
	if l.z != nil {
		l.z.Warn(msg, fields...)
	}
}

func (l Logger) Error(msg string, fields ...zap.Field) {
	if l.z != nil {
		l.z.Error(msg, fields...)
	}
}

// Field re-exports zap.Field's constructors so callers never need to
// import go.uber.org/zap directly just to build one.
type Field = zap.Field

var (
	String   = zap.String
	Int      = zap.Int
	Duration = zap.Duration
	Err      = zap.Error
	Bool     = zap.Bool
)
