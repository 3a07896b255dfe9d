// Package logging builds the zerolog loggers used across hearth.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New returns a logger writing to out. Format "human" forces the console
// writer and "json" forces JSON; otherwise a terminal gets the console
// writer. Unknown levels fall back to info.
func New(out io.Writer, level, format string) zerolog.Logger {
	w := out
	if useConsole(out, format) {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func useConsole(out io.Writer, format string) bool {
	switch format {
	case "human":
		return true
	case "json":
		return false
	}
	f, ok := out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
