package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger: human readable console output in
// development, JSON lines everywhere else.
func New(environment string) zerolog.Logger {
	return newWithWriter(environment, os.Stdout)
}

func newWithWriter(environment string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	env := strings.ToLower(strings.TrimSpace(environment))
	level := zerolog.InfoLevel
	if env == "" || env == "development" || env == "local" {
		level = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05", NoColor: out != os.Stdout}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "cost-reports").
		Logger()
}
