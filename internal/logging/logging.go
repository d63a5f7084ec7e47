package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger. Diagnostics render through a console
// writer on stderr so command output on stdout stays clean. Debug mode
// lowers the level and adds caller information.
func Init(debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	ctx := zerolog.New(output).With().Timestamp()
	if debug {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
}

// Component returns a logger tagged for one component.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
