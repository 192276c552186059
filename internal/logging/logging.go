package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config configures the process-wide logger.
type Config struct {
	Level   string    // debug, info, warn, error; empty reads DEBUG / LOG_LEVEL
	Format  string    // json or console; empty reads LOG_FORMAT, then detects a TTY
	Output  io.Writer // defaults to os.Stdout
	Service string    // attached to every record
}

var (
	mu           sync.RWMutex
	base         zerolog.Logger
	currentLevel LogLevel
	configured   bool
	initOnce     sync.Once
)

// Configure (re)builds the logger. Safe to call more than once; tests use
// it to capture output.
func Configure(cfg Config) {
	level := levelFromEnv()
	if cfg.Level != "" {
		level = ParseLevel(cfg.Level)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	tty := false
	if f, ok := out.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}

	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = strings.ToLower(os.Getenv("LOG_FORMAT"))
	}
	if format == "" {
		format = FormatJSON
		if tty {
			format = FormatConsole
		}
	}

	var w io.Writer = out
	if format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime, NoColor: !tty}
	}

	service := cfg.Service
	if service == "" {
		service = "video-converter"
	}

	l := zerolog.New(w).
		Level(level.zerolog()).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	mu.Lock()
	base = l
	currentLevel = level
	configured = true
	mu.Unlock()
}

// ensureConfigured applies the environment defaults on first use unless
// Configure already ran.
func ensureConfigured() {
	mu.RLock()
	ok := configured
	mu.RUnlock()
	if !ok {
		initOnce.Do(func() { Configure(Config{}) })
	}
}

func logger() zerolog.Logger {
	ensureConfigured()
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// levelFromEnv reads DEBUG first, then LOG_LEVEL.
func levelFromEnv() LogLevel {
	if debug := os.Getenv("DEBUG"); debug != "" {
		switch strings.ToLower(debug) {
		case "1", "true", "yes", "on":
			return LevelDebug
		}
	}
	return ParseLevel(os.Getenv("LOG_LEVEL"))
}

// ParseLevel maps a level name onto a LogLevel, defaulting to info.
func ParseLevel(s string) LogLevel {
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

// GetLevel returns the current log level
func GetLevel() LogLevel {
	ensureConfigured()
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

// Logger returns the structured logger for callers that want fields.
func Logger() zerolog.Logger {
	return logger()
}

// WithComponent returns a child logger annotated with a component name.
func WithComponent(component string) zerolog.Logger {
	return logger().With().Str("component", component).Logger()
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func Debug(format string, args ...interface{}) {
	l := logger()
	l.Debug().Msgf(format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	l := logger()
	l.Info().Msgf(format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	l := logger()
	l.Warn().Msgf(format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	l := logger()
	l.Error().Msgf(format, args...)
}

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	l := logger()
	l.Fatal().Msgf(format, args...)
}

// Printf logs without a level so the message is never filtered.
func Printf(format string, args ...interface{}) {
	l := logger()
	l.Log().Msgf(format, args...)
}

type ctxKey struct{}

// ContextWithRequestID stores a request id for FromContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestIDFromContext returns the request id stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// FromContext returns the logger enriched with the request id from ctx.
func FromContext(ctx context.Context) zerolog.Logger {
	l := logger()
	if id := RequestIDFromContext(ctx); id != "" {
		return l.With().Str("request_id", id).Logger()
	}
	return l
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
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
		return fmt.Sprintf("unknown(%d)", l)
	}
}
