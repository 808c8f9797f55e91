package types

import "log/slog"

// SlogLogger adapts *slog.Logger to Logger.
type SlogLogger struct {
	*slog.Logger
}

func NewSlogLogger(l *slog.Logger) SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return SlogLogger{Logger: l}
}

func (l SlogLogger) With(args ...any) Logger {
	return SlogLogger{Logger: l.Logger.With(args...)}
}
