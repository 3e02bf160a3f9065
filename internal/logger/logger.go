// Package logger is the leveled logger used across recruitdash.
//
// Output is discarded unless a log file is configured, so the terminal
// wizard never has its screen corrupted by stray log lines.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Environment variables read by New.
const (
	EnvLevel = "RECRUITDASH_LOG_LEVEL"
	EnvFile  = "RECRUITDASH_LOG_FILE"
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

// ParseLevel parses a level name, case-insensitively. "warning" is accepted
// as an alias for "warn".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

// Logger writes "[LEVEL] component: message" lines.
type Logger struct {
	mu     sync.Mutex
	level  Level
	out    *log.Logger
	file   *os.File
	prefix string
	parent *Logger
}

// Default is the process-wide logger used by the package-level helpers.
var Default = New()

// New creates a logger configured from RECRUITDASH_LOG_LEVEL and
// RECRUITDASH_LOG_FILE.
func New() *Logger {
	l := &Logger{
		level: LevelInfo,
		out:   log.New(io.Discard, "", log.LstdFlags),
	}
	if err := l.Configure(os.Getenv(EnvLevel), os.Getenv(EnvFile)); err != nil {
		l.level = LevelInfo
	}
	return l
}

// Configure applies a level name and a log file path. Empty values leave the
// current setting in place. Opening a new file closes the previous one.
func (l *Logger) Configure(level, path string) error {
	root := l.root()
	root.mu.Lock()
	defer root.mu.Unlock()

	if level != "" {
		lvl, err := ParseLevel(level)
		if err != nil {
			return err
		}
		root.level = lvl
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		if root.file != nil {
			_ = root.file.Close()
		}
		root.file = f
		root.out.SetOutput(f)
	}
	return nil
}

// Named returns a logger that shares this logger's output and level and
// tags every line with the given component name.
func (l *Logger) Named(component string) *Logger {
	return &Logger{prefix: component, parent: l.root()}
}

func (l *Logger) root() *Logger {
	if l.parent != nil {
		return l.parent
	}
	return l
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	root := l.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	if root.file == nil {
		return nil
	}
	err := root.file.Close()
	root.file = nil
	root.out.SetOutput(io.Discard)
	return err
}

func (l *Logger) SetLevel(level Level) {
	root := l.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.level = level
}

func (l *Logger) SetOutput(w io.Writer) {
	root := l.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.out.SetOutput(w)
}

func (l *Logger) Debug(format string, v ...any) { l.log(LevelDebug, format, v...) }
func (l *Logger) Info(format string, v ...any)  { l.log(LevelInfo, format, v...) }
func (l *Logger) Warn(format string, v ...any)  { l.log(LevelWarn, format, v...) }
func (l *Logger) Error(format string, v ...any) { l.log(LevelError, format, v...) }

func (l *Logger) log(level Level, format string, v ...any) {
	root := l.root()
	root.mu.Lock()
	defer root.mu.Unlock()

	if level < root.level {
		return
	}
	msg := fmt.Sprintf(format, v...)
	if l.prefix != "" {
		root.out.Printf("[%s] %s: %s", level, l.prefix, msg)
		return
	}
	root.out.Printf("[%s] %s", level, msg)
}

func Debug(format string, v ...any) { Default.Debug(format, v...) }
func Info(format string, v ...any)  { Default.Info(format, v...) }
func Warn(format string, v ...any)  { Default.Warn(format, v...) }
func Error(format string, v ...any) { Default.Error(format, v...) }

// Configure applies level and file settings to the default logger.
func Configure(level, path string) error { return Default.Configure(level, path) }

// Named returns a component logger backed by the default logger.
func Named(component string) *Logger { return Default.Named(component) }

// Close closes the default logger's file.
func Close() error { return Default.Close() }
