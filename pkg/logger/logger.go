// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets up the global logger: a console writer in development, JSON
// lines otherwise. An unknown level falls back to info.
func Init(development bool, level string) {
	InitWithWriter(development, level, os.Stderr)
}

// InitWithWriter is Init with an explicit output, used by tests.
func InitWithWriter(development bool, level string, w io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	out := w
	if development {
		out = zerolog.ConsoleWriter{Out: w, NoColor: w != os.Stderr}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
