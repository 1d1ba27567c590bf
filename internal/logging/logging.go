// Package logging sets up the process-wide structured logger (spec
// SPEC_FULL A2): colorized slog on an attached terminal, matching the
// way the teacher's own retrieval-pack sibling (meermanr's LightwaveRF
// bridge) wires slog.SetDefault to a slogcolor.Handler, falling back to
// plain JSON when stderr isn't a terminal (e.g. under systemd).
package logging

import (
	"log/slog"
	"os"

	"github.com/MatusOllah/slogcolor"
	"github.com/mattn/go-isatty"
)

// Setup builds and installs the process-wide default logger at the given
// level, returning it for components that prefer an explicit logger over
// slog.Default().
func Setup(level slog.Level) *slog.Logger {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		opts := slogcolor.DefaultOptions
		opts.Level = level
		handler = slogcolor.NewHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
