package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Logger writes structured JSON events tagged with service, host, action and request id
type Logger struct {
	service  string
	hostname string
	handler  *slog.Logger
}

// New creates a debug-level logger writing to stdout
func New(service string) *Logger {
	return NewWithWriter(service, "debug", os.Stdout)
}

// NewWithWriter creates a logger with the given level writing to w
func NewWithWriter(service, level string, w io.Writer) *Logger {
	hostname, _ := os.Hostname()

	handler := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))

	return &Logger{
		service:  service,
		hostname: hostname,
		handler:  handler,
	}
}

// Discard returns a logger that drops every event
func Discard() *Logger {
	return NewWithWriter("discard", "error", io.Discard)
}

// ParseLevel maps a config level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// GenerateRequestID returns a fresh request identifier
func GenerateRequestID() string {
	return uuid.NewString()
}

func (l *Logger) Debug(action, message, requestID string, fields map[string]any) {
	l.log(slog.LevelDebug, action, message, requestID, fields)
}

func (l *Logger) Info(action, message, requestID string, fields map[string]any) {
	l.log(slog.LevelInfo, action, message, requestID, fields)
}

func (l *Logger) Warn(action, message, requestID string, fields map[string]any) {
	l.log(slog.LevelWarn, action, message, requestID, fields)
}

// Error logs at error level; err may be nil for validation style failures
func (l *Logger) Error(action, message, requestID string, err error, fields map[string]any) {
	attrs := l.baseAttrs(action, requestID, fields)
	if err != nil {
		attrs = append(attrs, slog.Group("error",
			slog.String("msg", err.Error()),
			slog.String("stack", string(debug.Stack())),
		))
	}
	l.handler.LogAttrs(context.TODO(), slog.LevelError, message, attrs...)
}

func (l *Logger) log(level slog.Level, action, message, requestID string, fields map[string]any) {
	l.handler.LogAttrs(context.TODO(), level, message, l.baseAttrs(action, requestID, fields)...)
}

func (l *Logger) baseAttrs(action, requestID string, fields map[string]any) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		slog.String("service", l.service),
		slog.String("hostname", l.hostname),
		slog.String("action", action),
		slog.String("request_id", requestID),
	}
	if len(fields) > 0 {
		details := make([]any, 0, len(fields))
		for k, v := range fields {
			details = append(details, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Group("details", details...))
	}
	return attrs
}
