package logging

import (
	"fmt"

	"github.com/rs/zerolog"
)

const (
	colorRed     = 31
	colorGreen   = 32
	colorYellow  = 33
	colorMagenta = 35

	colorBold = 1
)

var consoleLevels = map[string]struct {
	label string
	color int
	bold  bool
}{
	zerolog.LevelTraceValue: {label: "TRACE", color: colorMagenta},
	zerolog.LevelDebugValue: {label: "DEBUG", color: colorYellow},
	zerolog.LevelInfoValue:  {label: "INFO ", color: colorGreen},
	zerolog.LevelWarnValue:  {label: "WARN ", color: colorRed},
	zerolog.LevelErrorValue: {label: "ERROR", color: colorRed, bold: true},
	zerolog.LevelFatalValue: {label: "FATAL", color: colorRed, bold: true},
	zerolog.LevelPanicValue: {label: "PANIC", color: colorRed, bold: true},
}

// consoleFormatLevel replaces the zerolog default level names and colors
// used by the console writer.
func consoleFormatLevel(i interface{}) string {
	noColor := !isTerminal()
	name, ok := i.(string)
	if !ok {
		return fmt.Sprintf("%v", i)
	}

	level, ok := consoleLevels[name]
	if !ok {
		return colorize("?????", colorBold, noColor)
	}

	out := colorize(level.label, level.color, noColor)
	if level.bold {
		out = colorize(out, colorBold, noColor)
	}
	return out
}

// colorize returns the string s wrapped in ANSI code c, unless disabled is true.
func colorize(s interface{}, c int, disabled bool) string {
	if disabled {
		return fmt.Sprintf("%s", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
