package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

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
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel maps LOG_LEVEL values to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Logger provides structured logging for sync runs
type Logger struct {
	out   *log.Logger
	level Level
	runID string
}

// New creates a logger writing to w at the given minimum level
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		out:   log.New(w, "", log.LstdFlags),
		level: level,
		runID: "-",
	}
}

// Default writes to stderr at info level
func Default() *Logger {
	return New(os.Stderr, LevelInfo)
}

// Discard drops everything
func Discard() *Logger {
	return New(io.Discard, LevelError+1)
}

// WithRunID returns a copy of the logger tagged with the given run id
func (l *Logger) WithRunID(runID string) *Logger {
	cp := *l
	cp.runID = runID
	return &cp
}

func (l *Logger) RunID() string {
	return l.runID
}

func (l *Logger) logf(level Level, operation string, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.out.Printf("[%s] run_id=%s operation=%s %s", level, l.runID, operation, msg)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(operation string, format string, args ...interface{}) {
	l.logf(LevelDebug, operation, format, args...)
}

// Info logs an info message with context
func (l *Logger) Info(operation string, message string) {
	l.logf(LevelInfo, operation, "message=%q", message)
}

// Infof logs a formatted info message with context
func (l *Logger) Infof(operation string, format string, args ...interface{}) {
	l.logf(LevelInfo, operation, format, args...)
}

// Warn logs a warning with context
func (l *Logger) Warn(operation string, message string) {
	l.logf(LevelWarn, operation, "message=%q", message)
}

// Warnf logs a formatted warning with context
func (l *Logger) Warnf(operation string, format string, args ...interface{}) {
	l.logf(LevelWarn, operation, format, args...)
}

// Error logs an error with context
func (l *Logger) Error(operation string, err error) {
	l.logf(LevelError, operation, "error=%q", errString(err))
}

// Errorf logs a formatted error with context
func (l *Logger) Errorf(operation string, format string, args ...interface{}) {
	l.logf(LevelError, operation, format, args...)
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
