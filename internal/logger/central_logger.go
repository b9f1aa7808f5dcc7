package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LevelTrace sits below slog.LevelDebug for request-level detail
const LevelTrace = slog.Level(-8)

const (
	logDirPerm  = 0o755
	logFilePerm = 0o644
)

// CentralLogger owns the output handlers and hands out module loggers
type CentralLogger struct {
	handler  slog.Handler
	config   *LoggingConfig
	timezone *time.Location
	files    []*os.File
	levelVar *slog.LevelVar
	mu       sync.Mutex
}

var global atomic.Pointer[CentralLogger]

// NewCentralLogger builds a logger from configuration. A nil config logs
// info and above to stdout.
func NewCentralLogger(cfg *LoggingConfig) (*CentralLogger, error) {
	if cfg == nil {
		cfg = &LoggingConfig{}
	}
	applyConfigDefaults(cfg)

	tz, err := loadTimezone(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	cl := &CentralLogger{
		config:   cfg,
		timezone: tz,
		levelVar: new(slog.LevelVar),
	}
	cl.levelVar.Set(parseLogLevel(cfg.DefaultLevel))

	var handlers []slog.Handler
	if cfg.Console.Enabled {
		handlers = append(handlers, newTextHandler(os.Stdout, parseLogLevel(cfg.Console.Level), tz))
	}
	if cfg.FileOutput != nil && cfg.FileOutput.Enabled {
		f, err := openLogFile(cfg.FileOutput.Path)
		if err != nil {
			return nil, err
		}
		cl.files = append(cl.files, f)
		handlers = append(handlers, newJSONHandler(f, parseLogLevel(cfg.FileOutput.Level), tz))
	}

	switch len(handlers) {
	case 0:
		cl.handler = newTextHandler(io.Discard, slog.LevelError, tz)
	case 1:
		cl.handler = handlers[0]
	default:
		cl.handler = newMultiHandler(handlers...)
	}
	return cl, nil
}

// Module returns a logger scoped to the named module. Per-module levels
// from configuration override the default level.
func (cl *CentralLogger) Module(name string) Logger {
	level := cl.levelVar.Level()
	if lvl, ok := cl.config.ModuleLevels[name]; ok {
		level = parseLogLevel(lvl)
	}
	return &moduleLogger{
		handler: cl.handler.WithAttrs([]slog.Attr{slog.String(moduleKey, name)}),
		module:  name,
		level:   level,
		central: cl,
	}
}

// SetLevel changes the default level for loggers created afterwards.
func (cl *CentralLogger) SetLevel(level LogLevel) {
	cl.levelVar.Set(parseLogLevel(string(level)))
}

// Flush syncs file outputs.
func (cl *CentralLogger) Flush() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	var firstErr error
	for _, f := range cl.files {
		if err := f.Sync(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close flushes and closes file outputs.
func (cl *CentralLogger) Close() error {
	if err := cl.Flush(); err != nil {
		return err
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	var firstErr error
	for _, f := range cl.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	cl.files = nil
	return firstErr
}

// SetGlobal installs cl as the process-wide logger returned by Global.
func SetGlobal(cl *CentralLogger) {
	global.Store(cl)
}

// Global returns a module logger from the process-wide logger, falling back
// to a stdout text logger when none is installed.
func Global(module string) Logger {
	if cl := global.Load(); cl != nil {
		return cl.Module(module)
	}
	return NewSlogLogger(os.Stdout, LogLevelInfo, time.Local).Module(module)
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, logDirPerm); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}

func loadTimezone(name string) (*time.Location, error) {
	switch strings.ToLower(name) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid logging timezone %q: %w", name, err)
	}
	return loc, nil
}

// parseLogLevel converts a level name into a slog level, defaulting to info
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// moduleLogger implements Logger on top of a slog.Handler
type moduleLogger struct {
	handler slog.Handler
	module  string
	level   slog.Level
	central *CentralLogger
}

func (ml *moduleLogger) Module(name string) Logger {
	if ml.central != nil {
		return ml.central.Module(name)
	}
	return &moduleLogger{
		handler: ml.handler.WithAttrs([]slog.Attr{slog.String(moduleKey, name)}),
		module:  name,
		level:   ml.level,
	}
}

func (ml *moduleLogger) Trace(msg string, fields ...Field) { ml.log(LevelTrace, msg, fields) }
func (ml *moduleLogger) Debug(msg string, fields ...Field) { ml.log(slog.LevelDebug, msg, fields) }
func (ml *moduleLogger) Info(msg string, fields ...Field)  { ml.log(slog.LevelInfo, msg, fields) }
func (ml *moduleLogger) Warn(msg string, fields ...Field)  { ml.log(slog.LevelWarn, msg, fields) }
func (ml *moduleLogger) Error(msg string, fields ...Field) { ml.log(slog.LevelError, msg, fields) }

func (ml *moduleLogger) Log(level LogLevel, msg string, fields ...Field) {
	ml.log(parseLogLevel(string(level)), msg, fields)
}

func (ml *moduleLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return ml
	}
	clone := *ml
	clone.handler = ml.handler.WithAttrs(fieldsToAttrs(fields))
	return &clone
}

// WithContext attaches the trace id carried by ctx, if any.
func (ml *moduleLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return ml
	}
	if traceID, ok := ctx.Value(traceIDContextKey{}).(string); ok && traceID != "" {
		return ml.With(String(traceIDKey, traceID))
	}
	return ml
}

func (ml *moduleLogger) Flush() error {
	if ml.central != nil {
		return ml.central.Flush()
	}
	return nil
}

func (ml *moduleLogger) log(level slog.Level, msg string, fields []Field) {
	if level < ml.level {
		return
	}
	ctx := context.Background()
	if !ml.handler.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.AddAttrs(fieldsToAttrs(fields)...)
	_ = ml.handler.Handle(ctx, r)
}

func fieldsToAttrs(fields []Field) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, fieldToAttr(f))
	}
	return attrs
}

func fieldToAttr(f Field) slog.Attr {
	switch v := f.Value.(type) {
	case string:
		return slog.String(f.Key, v)
	case int:
		return slog.Int(f.Key, v)
	case int64:
		return slog.Int64(f.Key, v)
	case float64:
		return slog.Float64(f.Key, v)
	case bool:
		return slog.Bool(f.Key, v)
	case time.Duration:
		return slog.String(f.Key, v.String())
	case time.Time:
		return slog.Time(f.Key, v)
	default:
		return slog.Any(f.Key, v)
	}
}

type traceIDContextKey struct{}

// ContextWithTraceID returns a context carrying a trace id picked up by WithContext.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDContextKey{}, traceID)
}
