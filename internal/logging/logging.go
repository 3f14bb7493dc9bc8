// Package logging builds the diagnostic logger. User-facing output goes
// through internal/ui; this logger carries the details behind it.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel is used when no valid level is given.
const DefaultLevel = zerolog.WarnLevel

// ParseLevel parses a level name, falling back to DefaultLevel.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return DefaultLevel
	}
	return lvl
}

// New returns a console logger writing to w at the given level.
// Colors are disabled when noColor is set.
func New(w io.Writer, level string, noColor bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	}
	return zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// NewStderr is New writing to os.Stderr.
func NewStderr(level string, noColor bool) zerolog.Logger {
	return New(os.Stderr, level, noColor)
}
