// Package logging builds the zerolog loggers injected into the gateway, the
// credential store and the session controller.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config is the subset of configuration the logger depends on.
type Config interface {
	GetEnv() string
	GetLogLevel() string
	GetAppName() string
}

// New returns a console logger in DEV and a JSON logger otherwise, writing to w
// (os.Stderr when w is nil).
func New(cfg Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if cfg.GetEnv() == "DEV" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("app", cfg.GetAppName()).
		Logger()
}

// TokenPresence describes a credential for logs without revealing it.
func TokenPresence(token string) string {
	if token == "" {
		return "absent"
	}
	return "present"
}
