package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// UseFileLogger writes JSON logs to a rotated file at filepath, in addition
// to stderr. The current level of L is preserved. The returned Closer closes
// the log file.
func UseFileLogger(filepath string) io.Closer {
	file := &lumberjack.Logger{
		Filename:   filepath,
		MaxSize:    10, // megabytes
		MaxBackups: 7,
		MaxAge:     28, // days
	}

	var stderr io.Writer = os.Stderr
	if isTerminal() {
		stderr = consoleWriter(os.Stderr)
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(stderr, file)).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(L.GetLevel())
	L = &logger
	return file
}
