package ecs

import "log/slog"

// Logger is the structured logger used by a Registry. Key/value pairs follow
// the log/slog convention.
type Logger interface {
	Debug(msg string, keyValues ...any)
	Info(msg string, keyValues ...any)
	Warn(msg string, keyValues ...any)
	Error(msg string, keyValues ...any)
}

type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger adapts a *slog.Logger to Logger. A nil logger means
// slog.Default() at the time of each call.
func NewSlogLogger(logger *slog.Logger) Logger {
	return &slogLogger{logger: logger}
}

func (l *slogLogger) get() *slog.Logger {
	if l.logger == nil {
		return slog.Default()
	}
	return l.logger
}

func (l *slogLogger) Debug(msg string, keyValues ...any) {
	l.get().Debug(msg, keyValues...)
}

func (l *slogLogger) Info(msg string, keyValues ...any) {
	l.get().Info(msg, keyValues...)
}

func (l *slogLogger) Warn(msg string, keyValues ...any) {
	l.get().Warn(msg, keyValues...)
}

func (l *slogLogger) Error(msg string, keyValues ...any) {
	l.get().Error(msg, keyValues...)
}

var defaultLogger = NewSlogLogger(nil)
