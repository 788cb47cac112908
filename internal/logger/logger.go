// Package logger provides the process-wide structured logger.
//
// It is a thin wrapper around log/slog with a colored text handler for
// terminals and a JSON handler for machine consumption. All packages log
// through the package-level functions; the sync command configures level,
// format, and output once at startup.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level represents a minimum log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	mu       sync.RWMutex
	level    = LevelInfo
	format   = "text"
	output   io.Writer = os.Stderr
	useColor           = isTerminal(os.Stderr.Fd())
	slogger            = slog.New(NewColorTextHandler(output, slog.LevelInfo, useColor))
)

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseLevel(s string) (Level, bool) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	}
	return LevelInfo, false
}

// rebuild recreates the slog handler from current settings. Callers must
// hold mu.
func rebuild() {
	if format == "json" {
		slogger = slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level.slog()}))
		return
	}
	slogger = slog.New(NewColorTextHandler(output, level.slog(), useColor))
}

// Init configures the logger. Output may be "stdout", "stderr", or a file
// path; files are opened in append mode and never colored.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		output = os.Stderr
		useColor = isTerminal(os.Stderr.Fd())
	case "stdout":
		output = os.Stdout
		useColor = isTerminal(os.Stdout.Fd())
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		output = f
		useColor = false
	}

	if l, ok := parseLevel(cfg.Level); ok {
		level = l
	}
	if f := strings.ToLower(cfg.Format); f == "text" || f == "json" {
		format = f
	}

	rebuild()
	return nil
}

// InitWithWriter points the logger at a custom writer. Primarily for tests.
func InitWithWriter(w io.Writer, levelStr, formatStr string) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	useColor = false
	if l, ok := parseLevel(levelStr); ok {
		level = l
	}
	if f := strings.ToLower(formatStr); f == "text" || f == "json" {
		format = f
	}
	rebuild()
}

// SetLevel sets the minimum log level. Invalid levels are ignored.
func SetLevel(levelStr string) {
	l, ok := parseLevel(levelStr)
	if !ok {
		return
	}
	mu.Lock()
	level = l
	rebuild()
	mu.Unlock()
}

func get() (*slog.Logger, Level) {
	mu.RLock()
	l, lv := slogger, level
	mu.RUnlock()
	return l, lv
}

// Debug logs at debug level with structured fields:
// Debug("message", "key1", value1, "key2", value2)
func Debug(msg string, args ...any) {
	l, lv := get()
	if lv > LevelDebug {
		return
	}
	l.Debug(msg, args...)
}

// Info logs at info level with structured fields.
func Info(msg string, args ...any) {
	l, lv := get()
	if lv > LevelInfo {
		return
	}
	l.Info(msg, args...)
}

// Warn logs at warn level with structured fields.
func Warn(msg string, args ...any) {
	l, lv := get()
	if lv > LevelWarn {
		return
	}
	l.Warn(msg, args...)
}

// Error logs at error level with structured fields.
func Error(msg string, args ...any) {
	l, _ := get()
	l.Error(msg, args...)
}

// With returns a slog.Logger with pre-bound attributes.
func With(args ...any) *slog.Logger {
	l, _ := get()
	return l.With(args...)
}
