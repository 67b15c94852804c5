// Package logger provides a small structured-logging facade over log/slog,
// exposed as package-level functions so call sites never need to thread a
// logger instance through every constructor.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
)

var singleton atomic.Pointer[slog.Logger]

func init() {
	singleton.Store(newDefault())
}

func newDefault() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler)
}

// Initialize replaces the singleton logger with a JSON logger on stderr,
// at debug level when debug is true and at info level otherwise.
func Initialize(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	singleton.Store(slog.New(handler))
}

// Get returns the underlying *slog.Logger for injection into structs that
// prefer an explicit dependency over the package-level functions.
func Get() *slog.Logger {
	return singleton.Load()
}

// Set replaces the singleton logger. Intended for tests that need to
// capture log output.
func Set(l *slog.Logger) {
	singleton.Store(l)
}

// Debug logs a message at debug level.
func Debug(msg string) { singleton.Load().Debug(msg) }

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...any) { singleton.Load().Debug(fmt.Sprintf(format, args...)) }

// Debugw logs a message at debug level with structured key/value pairs.
func Debugw(msg string, keysAndValues ...any) { singleton.Load().Debug(msg, keysAndValues...) }

// Info logs a message at info level.
func Info(msg string) { singleton.Load().Info(msg) }

// Infof logs a formatted message at info level.
func Infof(format string, args ...any) { singleton.Load().Info(fmt.Sprintf(format, args...)) }

// Infow logs a message at info level with structured key/value pairs.
func Infow(msg string, keysAndValues ...any) { singleton.Load().Info(msg, keysAndValues...) }

// Warn logs a message at warning level.
func Warn(msg string) { singleton.Load().Warn(msg) }

// Warnf logs a formatted message at warning level.
func Warnf(format string, args ...any) { singleton.Load().Warn(fmt.Sprintf(format, args...)) }

// Warnw logs a message at warning level with structured key/value pairs.
func Warnw(msg string, keysAndValues ...any) { singleton.Load().Warn(msg, keysAndValues...) }

// Error logs a message at error level.
func Error(msg string) { singleton.Load().Error(msg) }

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...any) { singleton.Load().Error(fmt.Sprintf(format, args...)) }

// Errorw logs a message at error level with structured key/value pairs.
func Errorw(msg string, keysAndValues ...any) { singleton.Load().Error(msg, keysAndValues...) }

// Fatalf logs a formatted message at error level and terminates the process.
// Only ever called from cmd/ during startup, never from the reconciliation
// core (which must never crash the process on a per-tick failure).
func Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	singleton.Load().Error(msg)
	os.Exit(1)
}
