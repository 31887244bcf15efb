// Package logging provides a leveled logger backed by zap, with an optional
// rotating file sink.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zap() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.FatalLevel + 1
	}
}

// ParseLevel parses a log level string. Unknown values mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// FileConfig holds file logging configuration.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns default file logging settings.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Logger is a leveled logger.
type Logger struct {
	mu       sync.Mutex
	level    zap.AtomicLevel
	output   io.Writer
	fileSink *lumberjack.Logger
	fileCore zapcore.Core
	zl       *zap.Logger
	sugar    *zap.SugaredLogger
}

// New creates a logger writing to stderr.
func New(level Level) *Logger {
	return NewWithFile(level, FileConfig{})
}

// NewWithFile creates a logger writing to stderr and, when file.Path is set,
// to a rotating log file.
func NewWithFile(level Level, file FileConfig) *Logger {
	l := &Logger{
		level:  zap.NewAtomicLevelAt(level.zap()),
		output: os.Stderr,
	}

	if file.Path != "" {
		l.fileSink = &lumberjack.Logger{
			Filename:   file.Path,
			MaxSize:    file.MaxSizeMB,
			MaxBackups: file.MaxBackups,
			MaxAge:     file.MaxAgeDays,
			Compress:   file.Compress,
			LocalTime:  true,
		}
		fileEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			CallerKey:        "caller",
			EncodeTime:       zapcore.ISO8601TimeEncoder,
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			EncodeCaller:     zapcore.ShortCallerEncoder,
			ConsoleSeparator: " ",
		})
		l.fileCore = zapcore.NewCore(fileEncoder, zapcore.AddSync(l.fileSink), l.level)
	}

	l.build()
	return l
}

// build tees the console core for the current output with the file core,
// which is created once per logger.
func (l *Logger) build() {
	var cores []zapcore.Core

	if l.output != nil && l.output != io.Discard {
		consoleEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			MessageKey:       "msg",
			EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05.000"),
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(l.output), l.level))
	}
	if l.fileCore != nil {
		cores = append(cores, l.fileCore)
	}

	l.zl = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	l.sugar = l.zl.Sugar()
}

// SetOutput sets the console output destination. The log file, if any,
// is kept open.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.build()
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.zap())
}

// Zap exposes the underlying logger.
func (l *Logger) Zap() *zap.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zl
}

func (l *Logger) sugared() *zap.SugaredLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sugar
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugared().Debugf(format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugared().Infof(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugared().Warnf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugared().Errorf(format, args...)
}

// Tracer returns a callback that logs structured debug events. It matches
// the trace hook of the house engine.
func (l *Logger) Tracer() func(msg string, kv ...any) {
	return func(msg string, kv ...any) {
		l.sugared().Debugw(msg, kv...)
	}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() {
	_ = l.Zap().Sync()
}

// Close flushes the logger and closes the log file.
func (l *Logger) Close() error {
	l.Sync()
	if l.fileSink == nil {
		return nil
	}
	return l.fileSink.Close()
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	l := &Logger{
		level:  zap.NewAtomicLevelAt(zapcore.FatalLevel + 1),
		output: io.Discard,
	}
	l.zl = zap.NewNop()
	l.sugar = l.zl.Sugar()
	return l
}
