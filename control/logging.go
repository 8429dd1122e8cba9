// control/logging.go
// Author: momentics <momentics@gmail.com>
//
// zerolog wiring shared by every package that logs: reactor.Engine
// takes a zerolog.Logger directly; this is where the default one is
// built and where future's best-effort ignored-exception diagnostic
// (spec.md §7) is routed through it.

package control

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/momentics/corereactor/future"
)

// NewLogger builds the console-writer logger every cmd/ entrypoint
// starts from, tagged with app for multi-process log correlation.
func NewLogger(app string) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("app", app).Logger()
}

// WireIgnoredExceptionLogger replaces future.IgnoredExceptionLogger so
// that a future dropped without ever being consumed logs through log
// instead of silently vanishing, per spec.md §7: "ignored exceptional
// futures are logged (a best-effort diagnostic)."
func WireIgnoredExceptionLogger(log zerolog.Logger) {
	future.IgnoredExceptionLogger = func(err error) {
		log.Warn().Err(err).Msg("future dropped without being consumed")
	}
}
