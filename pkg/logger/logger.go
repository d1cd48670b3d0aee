package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

// Init configures the global logger. Pretty console output in development,
// plain JSON elsewhere.
func Init(env string, logLevel string) {
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if env == "development" || env == "dev" || env == "" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log = zerolog.New(output).
		With().
		Timestamp().
		Logger()
}

// Get returns the global logger.
func Get() *zerolog.Logger {
	return &log
}
