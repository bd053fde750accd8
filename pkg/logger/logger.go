// ==============================================================================
// LOGGER PACKAGE - pkg/logger/logger.go
// ==============================================================================
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Logger interface {
	Info(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
	Warn(message string, fields map[string]interface{})
	Debug(message string, fields map[string]interface{})
	Fatal(message string, fields map[string]interface{})
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

type jsonLogger struct {
	logger zerolog.Logger
}

// New returns a JSON line logger on stdout tagged with the service name.
func New(serviceName string) Logger {
	return NewWithWriter(serviceName, os.Stdout, "info")
}

// NewWithWriter is New with an explicit sink and minimum level
// (debug, info, warn, error). Unknown levels fall back to info.
func NewWithWriter(serviceName string, w io.Writer, level string) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zl := zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
	return &jsonLogger{logger: zl}
}

func (l *jsonLogger) log(ev *zerolog.Event, message string, fields map[string]interface{}) {
	if ev == nil {
		return
	}
	ev.Fields(fields).Msg(message)
}

func (l *jsonLogger) Info(message string, fields map[string]interface{}) {
	l.log(l.logger.Info(), message, fields)
}

func (l *jsonLogger) Error(message string, fields map[string]interface{}) {
	l.log(l.logger.Error(), message, fields)
}

func (l *jsonLogger) Warn(message string, fields map[string]interface{}) {
	l.log(l.logger.Warn(), message, fields)
}

func (l *jsonLogger) Debug(message string, fields map[string]interface{}) {
	l.log(l.logger.Debug(), message, fields)
}

func (l *jsonLogger) Fatal(message string, fields map[string]interface{}) {
	// zerolog's Fatal event exits after writing
	l.log(l.logger.Fatal(), message, fields)
}

func NewNop() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (l *nopLogger) Info(message string, fields map[string]interface{})  {}
func (l *nopLogger) Error(message string, fields map[string]interface{}) {}
func (l *nopLogger) Warn(message string, fields map[string]interface{})  {}
func (l *nopLogger) Debug(message string, fields map[string]interface{}) {}
func (l *nopLogger) Fatal(message string, fields map[string]interface{}) {}
