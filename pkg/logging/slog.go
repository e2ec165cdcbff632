// Package logging adapts log/slog to the types.Logger contract used across
// go-access.
package logging

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-access/pkg/types"
)

// SlogLogger forwards registry log lines to a *slog.Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlog wraps logger. A nil logger falls back to slog.Default().
func NewSlog(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

var _ types.Logger = (*SlogLogger)(nil)

// Debug implements types.Logger.
func (l *SlogLogger) Debug(msg string, fields ...any) {
	l.logger.Debug(msg, fields...)
}

// Info implements types.Logger.
func (l *SlogLogger) Info(msg string, fields ...any) {
	l.logger.Info(msg, fields...)
}

// Error implements types.Logger. A nil err is omitted from the record.
func (l *SlogLogger) Error(msg string, err error, fields ...any) {
	if err != nil {
		fields = append([]any{slog.Any("error", err)}, fields...)
	}
	l.logger.Log(context.Background(), slog.LevelError, msg, fields...)
}
