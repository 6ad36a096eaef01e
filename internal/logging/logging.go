package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Default log level when none (or an invalid one) is configured
const DefaultLevel = zerolog.InfoLevel

// ConfigureGlobal configures the global zerolog logger with a console writer
// and the given level string. Invalid levels fall back to DefaultLevel.
func ConfigureGlobal(levelStr string) {
	ConfigureGlobalWithWriter(levelStr, zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
}

// ConfigureGlobalWithWriter is ConfigureGlobal with an explicit writer,
// used by tests to capture output.
func ConfigureGlobalWithWriter(levelStr string, w io.Writer) {
	level := ParseLevel(levelStr)
	zerolog.SetGlobalLevel(level)

	log.Logger = zerolog.New(w).With().Timestamp().Logger().Level(level)
	zerolog.DefaultContextLogger = &log.Logger
}

// ParseLevel converts a string log level to zerolog.Level
func ParseLevel(levelStr string) zerolog.Level {
	if levelStr == "" {
		return DefaultLevel
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return DefaultLevel
	}
	return level
}

// Component returns a child of the global logger tagged with a component name
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
