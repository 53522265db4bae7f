// Package logging holds the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the global logger. Domain packages never log; the app and CLI
// layers go through this.
var Logger zerolog.Logger

func init() {
	Logger = New(os.Stderr)
}

// New returns a console logger writing to w at info level.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
}

// SetOutput replaces the global logger's writer, keeping its level.
func SetOutput(w io.Writer) {
	level := Logger.GetLevel()
	Logger = New(w).Level(level)
}

// SetLevel parses level ("trace" through "fatal", or "disabled") and
// applies it to the global logger.
func SetLevel(level string) error {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	if l == zerolog.NoLevel {
		l = zerolog.InfoLevel
	}
	Logger = Logger.Level(l)
	return nil
}

func With() zerolog.Context {
	return Logger.With()
}

func Trace() *zerolog.Event {
	return Logger.Trace()
}

func Debug() *zerolog.Event {
	return Logger.Debug()
}

func Info() *zerolog.Event {
	return Logger.Info()
}

func Warn() *zerolog.Event {
	return Logger.Warn()
}

func Error() *zerolog.Event {
	return Logger.Error()
}

func Fatal() *zerolog.Event {
	return Logger.Fatal()
}
