// ABOUTME: Structured logging facade over zerolog
// ABOUTME: Components receive a Logger at construction, never a global
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the minimal logging surface the rest of the module uses.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	WithField(key string, value interface{}) Logger
}

type zerologLogger struct {
	logger zerolog.Logger
}

// New returns a Logger writing JSON lines to stderr.
func New() Logger {
	return NewWithWriter(os.Stderr)
}

// NewWithWriter returns a Logger writing to the given writer. Tests pass
// a buffer; Silent passes io.Discard.
func NewWithWriter(w io.Writer) Logger {
	return &zerologLogger{logger: zerolog.New(w).With().Timestamp().Logger()}
}

// Silent returns a Logger that drops everything.
func Silent() Logger {
	return NewWithWriter(io.Discard)
}

func (l *zerologLogger) Debug(msg string) { l.logger.Debug().Msg(msg) }
func (l *zerologLogger) Info(msg string)  { l.logger.Info().Msg(msg) }
func (l *zerologLogger) Warn(msg string)  { l.logger.Warn().Msg(msg) }
func (l *zerologLogger) Error(msg string) { l.logger.Error().Msg(msg) }

func (l *zerologLogger) WithField(key string, value interface{}) Logger {
	return &zerologLogger{logger: l.logger.With().Interface(key, value).Logger()}
}
