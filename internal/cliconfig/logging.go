package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	return logger
}

// SetLogLevel adjusts the package logger's level from a level name.
// Unknown names are ignored.
func SetLogLevel(level string) {
	if l, err := zerolog.ParseLevel(level); err == nil {
		logger = logger.Level(l)
	}
}
