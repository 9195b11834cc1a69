package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Initialize sets up the global logger on stdout
func Initialize(env, level string) {
	InitializeTo(os.Stdout, env, level)
}

// InitializeTo sets up the global logger on out.
// Local and development environments get pretty console output, everything else JSON.
func InitializeTo(out io.Writer, env, level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	if env == "local" || env == "development" {
		output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Caller().Logger()
	} else {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// Get returns the global logger
func Get() *zerolog.Logger {
	return &log.Logger
}
