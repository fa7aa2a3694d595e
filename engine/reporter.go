package engine

import (
	"io"

	"github.com/rs/zerolog"
)

// Reporter receives progress and error notifications from the engine.
// Notifications are fire and forget; a reporter never influences control
// flow.
type Reporter interface {
	Logf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type logReporter struct {
	log zerolog.Logger
}

// NewReporter builds a console reporter. Verbose lowers the level to debug,
// quiet raises it to error; the two are mutually exclusive and validated
// upstream.
func NewReporter(out io.Writer, verbose, quiet bool) Reporter {
	level := zerolog.InfoLevel
	switch {
	case verbose:
		level = zerolog.DebugLevel
	case quiet:
		level = zerolog.ErrorLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: out}).
		Level(level).
		With().Timestamp().Logger()
	return &logReporter{log: log}
}

func (r *logReporter) Logf(format string, args ...interface{}) {
	r.log.Info().Msgf(format, args...)
}

func (r *logReporter) Debugf(format string, args ...interface{}) {
	r.log.Debug().Msgf(format, args...)
}

func (r *logReporter) Errorf(format string, args ...interface{}) {
	r.log.Error().Msgf(format, args...)
}
