package wire

import (
	"fmt"
	"sync/atomic"
)

// Stats holds the monotonic counters owned by the transport adapter (C6) and
// incremented by the receive state machine (C3) and by the transport adapter.
// Each field is independently incrementable under concurrent access; a
// summary() read is not required to be atomic across fields, only monotonic
// per-field, per spec.md §4.4.
type Stats struct {
	framesSent      atomic.Uint64
	framesReceived  atomic.Uint64
	bytesIn         atomic.Uint64
	bytesOut        atomic.Uint64
	crcErrors       atomic.Uint64
	framingErrors   atomic.Uint64
	overflowErrors  atomic.Uint64
	timeoutErrors   atomic.Uint64
}

func NewStats() *Stats { return &Stats{} }

func (s *Stats) AddFramesSent(n uint64)     { s.framesSent.Add(n) }
func (s *Stats) AddFramesReceived(n uint64) { s.framesReceived.Add(n) }
func (s *Stats) AddBytesIn(n uint64)        { s.bytesIn.Add(n) }
func (s *Stats) AddBytesOut(n uint64)       { s.bytesOut.Add(n) }
func (s *Stats) AddCRCError()               { s.crcErrors.Add(1) }
func (s *Stats) AddFramingError()           { s.framingErrors.Add(1) }
func (s *Stats) AddOverflowError()          { s.overflowErrors.Add(1) }
func (s *Stats) AddTimeoutError()           { s.timeoutErrors.Add(1) }

func (s *Stats) FramesSent() uint64     { return s.framesSent.Load() }
func (s *Stats) FramesReceived() uint64 { return s.framesReceived.Load() }
func (s *Stats) BytesIn() uint64        { return s.bytesIn.Load() }
func (s *Stats) BytesOut() uint64       { return s.bytesOut.Load() }
func (s *Stats) CRCErrors() uint64      { return s.crcErrors.Load() }
func (s *Stats) FramingErrors() uint64  { return s.framingErrors.Load() }
func (s *Stats) OverflowErrors() uint64 { return s.overflowErrors.Load() }
func (s *Stats) TimeoutErrors() uint64  { return s.timeoutErrors.Load() }

// Summary renders a single consistent-enough read of all counters, suitable
// for periodic event-sink emission.
func (s *Stats) Summary() string {
	return fmt.Sprintf(
		"frames(sent=%d recv=%d) bytes(in=%d out=%d) errors(crc=%d framing=%d overflow=%d timeout=%d)",
		s.FramesSent(), s.FramesReceived(), s.BytesIn(), s.BytesOut(),
		s.CRCErrors(), s.FramingErrors(), s.OverflowErrors(), s.TimeoutErrors(),
	)
}
