// Package sniffer implements the out-of-band crash sniffer (C7). The
// embedded controller's firmware panics to the same serial line the binary
// protocol runs over, as a plain-text banner rather than a framed message.
// Sniffer watches the raw byte stream for that banner, independently of
// frame boundaries, and quarantines the link the moment it appears.
package sniffer

import (
	"bytes"
	"strings"
	"sync/atomic"
)

const (
	bannerMarker  = "Guru Meditation Error"
	elfTrailerTag = "ELF file SHA256:"

	// maxLineBuffer bounds the unterminated-line buffer so a firmware that
	// never emits a newline cannot grow this package's memory without limit.
	maxLineBuffer = 8192
)

// Sniffer accumulates raw bytes into lines and watches each completed line
// for the crash banner and its trailing ELF identification line. It is not
// safe for concurrent Process calls, but Quarantined is safe to poll from
// any goroutine.
type Sniffer struct {
	quarantined atomic.Bool
	buf         []byte

	// OnQuarantine is invoked once, the instant the crash banner is seen.
	OnQuarantine func()

	// OnELFTrailer is invoked with the raw trailer line once the firmware's
	// panic dump reaches its terminal "ELF file SHA256:" line. Callers use
	// this to log the build identity before giving up on the link.
	OnELFTrailer func(line string)
}

// New builds a Sniffer with no callbacks set; assign OnQuarantine and
// OnELFTrailer before feeding it data.
func New() *Sniffer {
	return &Sniffer{}
}

// Quarantined reports whether the crash banner has ever been seen. Once
// true it never reverts to false: quarantine is a one-way gate for the
// lifetime of this Sniffer, per spec.md §4.7.
func (s *Sniffer) Quarantined() bool {
	return s.quarantined.Load()
}

// Process scans data for complete lines and checks each one for the banner
// and trailer markers. Partial lines are retained across calls.
func (s *Sniffer) Process(data []byte) {
	s.buf = append(s.buf, data...)

	for {
		idx := bytes.IndexByte(s.buf, '\n')
		if idx < 0 {
			break
		}
		line := s.buf[:idx]
		s.buf = s.buf[idx+1:]
		s.checkLine(string(bytes.TrimRight(line, "\r")))
	}

	if len(s.buf) > maxLineBuffer {
		s.buf = s.buf[len(s.buf)-maxLineBuffer:]
	}
}

func (s *Sniffer) checkLine(line string) {
	if strings.Contains(line, bannerMarker) {
		if !s.quarantined.Swap(true) && s.OnQuarantine != nil {
			s.OnQuarantine()
		}
		return
	}

	if s.quarantined.Load() && strings.Contains(line, elfTrailerTag) {
		if s.OnELFTrailer != nil {
			s.OnELFTrailer(line)
		}
	}
}
