package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap SugaredLogger to Logger.
type ZapLogger struct {
	s     *zap.SugaredLogger
	level *zap.AtomicLevel
}

// NewZap wraps an existing SugaredLogger. SetLevel is a no-op on the result
// because the level belongs to whoever built s.
func NewZap(s *zap.SugaredLogger) *ZapLogger {
	if s == nil {
		s = zap.NewNop().Sugar()
	}
	return &ZapLogger{s: s}
}

// NewZapJSON builds a JSON logger writing to stdout with an adjustable level.
func NewZapJSON(level Level) *ZapLogger {
	atom := zap.NewAtomicLevelAt(zapLevel(level))

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stdout)),
		atom,
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	return &ZapLogger{s: logger.Sugar().Named(DefaultTag), level: &atom}
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		// Above fatal nothing is written.
		return zapcore.FatalLevel + 1
	}
}

func (z *ZapLogger) SetLevel(level Level) {
	if z == nil || z.level == nil {
		return
	}
	z.level.SetLevel(zapLevel(level))
}

// Named returns a child logger with name appended to the logger name.
func (z *ZapLogger) Named(name string) *ZapLogger {
	if z == nil {
		return NewZap(nil)
	}
	return &ZapLogger{s: z.s.Named(name), level: z.level}
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	if z == nil {
		return nil
	}
	return z.s.Sync()
}

func (z *ZapLogger) Debugf(format string, args ...any) { z.s.Debugf(format, args...) }
func (z *ZapLogger) Infof(format string, args ...any)  { z.s.Infof(format, args...) }
func (z *ZapLogger) Warnf(format string, args ...any)  { z.s.Warnf(format, args...) }
func (z *ZapLogger) Errorf(format string, args ...any) { z.s.Errorf(format, args...) }
