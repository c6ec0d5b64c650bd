// Package obs configures zerolog for the phrase search service: one global
// level, one logger per component, and a hook that logs highlight state
// changes.
package obs

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServiceName is stamped on every component logger
const ServiceName = "phrase-search"

// InitLogger sets the global level and output. Unknown levels fall back to
// info; ENV=dev switches to console output
func InitLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if os.Getenv("ENV") == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// Logger returns a logger for one component of the service
func Logger(component string) zerolog.Logger {
	return log.With().
		Str("service", ServiceName).
		Str("component", component).
		Logger()
}
