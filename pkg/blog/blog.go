// Package blog is the shared logging and crash-reporting facade.
//
// Messages are routed to a replaceable *slog.Logger. Levels follow the
// classic error/warning/info/debug split and map onto slog levels, so a
// text or JSON slog handler installed by the command decides the output.
//
// A crash is an unrecoverable condition such as allocator exhaustion. Crash
// reports through the installed crash handler and then panics; it never
// returns.
package blog

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Level is a log severity.
type Level int

const (
	// LevelError is for problems that may affect the program but do not
	// require termination.
	LevelError Level = 100
	// LevelWarning is for recoverable problems.
	LevelWarning Level = 200
	// LevelInfo is for informative messages.
	LevelInfo Level = 300
	// LevelDebug is for developer diagnostics.
	LevelDebug Level = 400
)

// SlogLevel returns the slog level for l. Unknown levels map to info.
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarning:
		return slog.LevelWarn
	case LevelDebug:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

var logger atomic.Pointer[slog.Logger]

// SetLogger replaces the logger. Passing nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// Printf formats a message and logs it at the given level.
func Printf(level Level, format string, args ...any) {
	l := Logger()
	lv := level.SlogLevel()
	if !l.Enabled(context.Background(), lv) {
		return
	}
	l.Log(context.Background(), lv, fmt.Sprintf(format, args...))
}

// Debug logs msg with key/value attributes at debug level.
func Debug(msg string, args ...any) { Logger().Debug(msg, args...) }

// Info logs msg with key/value attributes at info level.
func Info(msg string, args ...any) { Logger().Info(msg, args...) }

// Warn logs msg with key/value attributes at warning level.
func Warn(msg string, args ...any) { Logger().Warn(msg, args...) }

// Error logs msg with key/value attributes at error level.
func Error(msg string, args ...any) { Logger().Error(msg, args...) }
