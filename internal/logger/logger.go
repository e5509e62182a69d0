package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	base       zerolog.Logger
	configured atomic.Bool
)

// Options controls how the global logger is built.
type Options struct {
	Level  string    // debug|info|warn|error
	Pretty bool      // human readable console output instead of JSON
	Out    io.Writer // defaults to os.Stdout
}

// Init configures the global JSON logger from the environment.
//
// Environment variables (optional):
//   - LOG_LEVEL: debug|info|warn|error (default: info)
//   - LOG_PRETTY: true|false (default: false)
//   - LOG_OUTPUT: stdout|stderr (default: stdout)
func Init() {
	var out io.Writer = os.Stdout
	if strings.EqualFold(getenv("LOG_OUTPUT", "stdout"), "stderr") {
		out = os.Stderr
	}
	Configure(Options{
		Level:  getenv("LOG_LEVEL", "info"),
		Pretty: strings.EqualFold(getenv("LOG_PRETTY", "false"), "true"),
		Out:    out,
	})
}

// Configure replaces the global logger.
func Configure(o Options) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	w := o.Out
	if w == nil {
		w = os.Stdout
	}
	if o.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	base = zerolog.New(w).With().Timestamp().Str("service", "quotepulse").Logger().Level(parseLevel(o.Level))
	configured.Store(true)
}

// L returns the global logger. Call Init() once on startup.
func L() *zerolog.Logger {
	if !configured.Load() {
		Init()
	}
	return &base
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
