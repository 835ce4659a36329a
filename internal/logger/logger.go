package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents different log levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelSuccess
	LevelError
	LevelFatal
)

var levelNames = map[LogLevel]string{
	LevelDebug:   "debug",
	LevelInfo:    "info",
	LevelWarn:    "warn",
	LevelSuccess: "success",
	LevelError:   "error",
	LevelFatal:   "fatal",
}

// Success is not a zerolog level; it is written at info with a marker field.
var zerologLevels = map[LogLevel]zerolog.Level{
	LevelDebug:   zerolog.DebugLevel,
	LevelInfo:    zerolog.InfoLevel,
	LevelWarn:    zerolog.WarnLevel,
	LevelSuccess: zerolog.InfoLevel,
	LevelError:   zerolog.ErrorLevel,
	LevelFatal:   zerolog.FatalLevel,
}

var (
	globalMu     sync.RWMutex
	globalOut    io.Writer = os.Stderr
	globalLevel            = LevelInfo
	globalFormat           = "console"
	// globalGen changes on every Configure so package loggers rebuild once.
	globalGen uint64
)

// Configure sets the process-wide output, minimum level and format
// ("console" or "json") for every logger created afterwards.
func Configure(out io.Writer, level LogLevel, format string) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalOut = out
	globalLevel = level
	globalFormat = format
	globalGen++
}

// ParseLevel maps a config string onto a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	for lvl, name := range levelNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return lvl, nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger is the main logger struct
type Logger struct {
	mu       sync.Mutex
	minLevel LogLevel
	levelSet bool
	bound    bool
	zl       zerolog.Logger
	pkg      string

	// package loggers only: zl is valid while gen matches globalGen
	cached bool
	gen    uint64
}

// New creates a new Logger instance
func New(out io.Writer, pkg string, minLevel LogLevel, format string) *Logger {
	var w io.Writer = out
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}
	zl := zerolog.New(w).With().Timestamp().Logger()
	if pkg != "" {
		zl = zl.With().Str("pkg", pkg).Logger()
	}
	return &Logger{minLevel: minLevel, levelSet: true, bound: true, zl: zl, pkg: pkg}
}

// PackageLogger creates a logger tagged with a package display name.
// Settings are resolved at log time so loggers declared as package vars
// pick up Configure calls made later from main.
func PackageLogger(pkgName string, displayName string) *Logger {
	return &Logger{pkg: strings.TrimSpace(displayName + " " + pkgName)}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
	l.levelSet = true
	l.cached = false
}

func (l *Logger) resolve() (zerolog.Logger, LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bound {
		return l.zl, l.minLevel
	}
	// package logger: bound to whatever Configure last set
	globalMu.RLock()
	defer globalMu.RUnlock()
	if l.cached && l.gen == globalGen {
		return l.zl, l.minLevel
	}
	min := globalLevel
	if l.levelSet {
		min = l.minLevel
	}
	l.zl = New(globalOut, l.pkg, min, globalFormat).zl
	l.minLevel = min
	l.cached = true
	l.gen = globalGen
	return l.zl, min
}

// Log logs a message at a specific level
func (l *Logger) Log(level LogLevel, msg string, args ...interface{}) {
	zl, min := l.resolve()
	if level < min {
		return
	}
	ev := zl.WithLevel(zerologLevels[level])
	if level == LevelSuccess {
		ev = ev.Bool("success", true)
	}
	ev.Msgf(msg, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.Log(LevelDebug, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.Log(LevelInfo, msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.Log(LevelWarn, msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.Log(LevelError, msg, args...)
}

// Success logs a success message
func (l *Logger) Success(msg string, args ...interface{}) {
	l.Log(LevelSuccess, msg, args...)
}

// Timed logs the duration of a function execution
func (l *Logger) Timed(label string, fn func() error) error {
	start := time.Now()
	l.Info("starting %s", label)
	if err := fn(); err != nil {
		l.Error("%s failed after %v: %v", label, time.Since(start).Round(time.Millisecond), err)
		return err
	}
	l.Success("completed %s in %v", label, time.Since(start).Round(time.Millisecond))
	return nil
}
