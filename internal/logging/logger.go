// Package logging provides a shared logger and log utilities to be used in all internal packages.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// L is the logger used by every package. Use L directly for structured
// fields, or the Debugf/Infof/Warnf/Errorf helpers for plain messages.
var L = newLogger(os.Stderr)

func newLogger(writer io.Writer) *zerolog.Logger {
	if isTerminal() {
		writer = consoleWriter(writer)
	}

	logger := zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(zerolog.InfoLevel)
	return &logger
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:         out,
		TimeFormat:  time.RFC3339,
		FormatLevel: consoleFormatLevel,
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// SetLevel changes the level of L. levelName is one of trace, debug, info,
// warn, error.
func SetLevel(levelName string) error {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", levelName, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := L.Level(level)
	L = &logger
	return nil
}

func Debugf(format string, v ...interface{}) {
	L.Debug().CallerSkipFrame(1).Msgf(format, v...)
}

func Infof(format string, v ...interface{}) {
	L.Info().CallerSkipFrame(1).Msgf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	L.Warn().CallerSkipFrame(1).Msgf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	L.Error().CallerSkipFrame(1).Msgf(format, v...)
}
