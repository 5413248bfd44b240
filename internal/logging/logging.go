// Package logging configures zerolog for the command-line tool and adapts it
// to programmer.Logger.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "EEPROM_LOG_LEVEL"
	EnvLogNoColor = "EEPROM_LOG_NOCOLOR"
)

// Options control the console logger.
type Options struct {
	Level   zerolog.Level
	NoColor bool
	Out     io.Writer
}

// DefaultOptions logs info and above to stderr in color.
func DefaultOptions() Options {
	return Options{
		Level: zerolog.InfoLevel,
		Out:   os.Stderr,
	}
}

// New builds a console logger. The level string (usually from config) is
// applied first, then the environment overrides.
func New(level string, opts Options) zerolog.Logger {
	if lvl, ok := ParseLevel(level); ok {
		opts.Level = lvl
	}
	applyEnvOverrides(&opts)

	if opts.Out == nil {
		opts.Out = os.Stderr
	}

	output := zerolog.ConsoleWriter{
		Out:        opts.Out,
		NoColor:    opts.NoColor,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(output).Level(opts.Level).With().Timestamp().Logger()
}

func applyEnvOverrides(opts *Options) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		opts.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		opts.NoColor = v
	}
}

// ParseLevel maps a level name to a zerolog level. ok is false for empty
// or unknown names.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
