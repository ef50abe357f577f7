package log

import (
	"io"
	stdlog "log"
	"os"
	"sync/atomic"
)

// DefaultTag prefixes every line written by StdLogger.
const DefaultTag = "wishapi"

// Logger is a minimal printf-style logger used by the SDK.
//
// Implement this interface if you want to plug in your own logging, or wrap a
// zap logger with NewZap.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Level controls what gets written by StdLogger.
//
// The ordering is: Debug < Info < Warn < Error < Off.
// Any message below the configured level is ignored.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

// ParseLevel maps a level name to a Level. Unknown names map to LevelInfo.
func ParseLevel(name string) Level {
	switch name {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "off", "none":
		return LevelOff
	default:
		return LevelInfo
	}
}

// StdLogger is a tiny default implementation of Logger using the standard library log package.
// SetLevel and SetTag may be called while other goroutines are logging.
type StdLogger struct {
	l     *stdlog.Logger
	level atomic.Int32
	tag   atomic.Value // string
}

func NewStdLogger(w io.Writer, level Level) *StdLogger {
	if w == nil {
		w = os.Stderr
	}
	return newStdLogger(stdlog.New(w, "", stdlog.LstdFlags), level, DefaultTag)
}

func newStdLogger(l *stdlog.Logger, level Level, tag string) *StdLogger {
	s := &StdLogger{l: l}
	s.level.Store(int32(level))
	s.tag.Store(tag)
	return s
}

func NewDefault() *StdLogger {
	return NewStdLogger(os.Stderr, LevelInfo)
}

func (s *StdLogger) SetLevel(level Level) {
	if s == nil {
		return
	}
	s.level.Store(int32(level))
}

func (s *StdLogger) SetTag(tag string) {
	if s == nil {
		return
	}
	s.tag.Store(tag)
}

func (s *StdLogger) getTag() string {
	tag, _ := s.tag.Load().(string)
	return tag
}

func (s *StdLogger) enabled(level Level) bool {
	return s != nil && Level(s.level.Load()) <= level
}

func (s *StdLogger) format(format string) string {
	tag := s.getTag()
	if tag == "" {
		return format
	}
	return tag + ": " + format
}

func (s *StdLogger) Debugf(format string, args ...any) {
	if !s.enabled(LevelDebug) {
		return
	}
	s.l.Printf("DEBUG: "+s.format(format), args...)
}

func (s *StdLogger) Infof(format string, args ...any) {
	if !s.enabled(LevelInfo) {
		return
	}
	s.l.Printf("INFO: "+s.format(format), args...)
}

func (s *StdLogger) Warnf(format string, args ...any) {
	if !s.enabled(LevelWarn) {
		return
	}
	s.l.Printf("WARN: "+s.format(format), args...)
}

func (s *StdLogger) Errorf(format string, args ...any) {
	if !s.enabled(LevelError) {
		return
	}
	s.l.Printf("ERROR: "+s.format(format), args...)
}

// Named returns a logger whose messages are scoped to name, e.g. "wishapi:merchant".
//
// StdLogger and ZapLogger produce a child that shares the parent's output and
// starts at the parent's level. Other implementations are returned unchanged.
func Named(logger Logger, name string) Logger {
	if logger == nil {
		return NopLogger{}
	}
	switch l := logger.(type) {
	case *StdLogger:
		tag := name
		if parent := l.getTag(); parent != "" {
			tag = parent + ":" + name
		}
		return newStdLogger(l.l, Level(l.level.Load()), tag)
	case *ZapLogger:
		return l.Named(name)
	default:
		return logger
	}
}

// NopLogger discards all logs.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
