// Package eventsink is the categorized logging surface (C12): every other
// package writes through one of four streams — service, incoming, outgoing,
// binary — rather than reaching for the standard logger directly. Rotation
// and persistence are out of scope; this package only shapes and levels the
// stream.
package eventsink

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Sink owns the four categorized sub-loggers.
type Sink struct {
	Service  *log.Logger
	Incoming *log.Logger
	Outgoing *log.Logger
	Binary   *log.Logger
}

// Options configures the sink's output and minimum level.
type Options struct {
	Writer     io.Writer
	Level      log.Level
	ReportTime bool
}

// New builds a Sink writing to opts.Writer (os.Stderr if nil), each
// sub-logger prefixed with its category so a human tailing the combined
// stream can tell the four apart at a glance.
func New(opts Options) *Sink {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	mk := func(prefix string) *log.Logger {
		l := log.NewWithOptions(w, log.Options{
			ReportTimestamp: opts.ReportTime,
			Prefix:          prefix,
		})
		l.SetLevel(opts.Level)
		return l
	}

	return &Sink{
		Service:  mk("service"),
		Incoming: mk("incoming"),
		Outgoing: mk("outgoing"),
		Binary:   mk("binary"),
	}
}

// Default builds a Sink at info level writing to stderr, suitable for a
// process that hasn't finished loading its configuration yet.
func Default() *Sink {
	return New(Options{Level: log.InfoLevel, ReportTime: true})
}
