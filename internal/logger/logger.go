package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. Development gets a human-readable
// console writer, every other environment writes JSON to stdout.
func New(environment, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil && parsed != zerolog.NoLevel {
		lvl = parsed
	}

	if strings.EqualFold(environment, "development") {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).Level(lvl).With().
		Timestamp().
		Str("service", "supplier-contracts").
		Logger()
}
