package httpapi

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "socialmap-api"

// LogOptions selects the level and output of the service logger.
type LogOptions struct {
	Level string
	// Console writes human-readable lines instead of JSON.
	Console bool
	Out     io.Writer
}

func NewLogger(level string) zerolog.Logger {
	return NewLoggerWith(LogOptions{Level: level})
}

func NewLoggerWith(o LogOptions) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := o.Out
	if out == nil {
		out = os.Stdout
	}
	if o.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(out).
		Level(parseLevel(o.Level)).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// parseLevel accepts zerolog level names plus "warning". Unknown or empty
// input means info.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return zerolog.WarnLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
