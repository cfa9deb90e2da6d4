// Package logging builds the process logger and the HTTP access log.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a logger for env at the named level and installs it as the
// zerolog global.  Development environments get a human readable console
// writer; everything else writes one JSON object per line to stdout.
func New(env, level string) zerolog.Logger {
	var w io.Writer = os.Stdout
	if isDev(env) {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	l := build(w, level)
	log.Logger = l
	zerolog.DefaultContextLogger = &l
	return l
}

func build(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	}
	return false
}
