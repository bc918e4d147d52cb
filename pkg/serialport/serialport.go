// Package serialport is the transport adapter (C6): it owns the physical
// serial port, runs the single reader goroutine that feeds bytes to the
// crash sniffer (C7) and the receive state machine (C3), and serializes
// writes from however many goroutines want to send.
package serialport

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"

	"github.com/librescoot/audio-mixer-bridge/pkg/eventsink"
	"github.com/librescoot/audio-mixer-bridge/pkg/sniffer"
	"github.com/librescoot/audio-mixer-bridge/pkg/wire"
)

const readBufferSize = 4096

// ErrQuarantined describes a send suppressed while the crash sniffer has the
// link quarantined. Send logs it at debug level and returns nil, so callers
// see a suppressed, not a failed, send.
var ErrQuarantined = errors.New("serialport: link quarantined by crash sniffer")

// Transport owns the serial.Port and the one goroutine that reads from it.
type Transport struct {
	device        string
	mode          *serial.Mode
	readTimeout   time.Duration
	autoReconnect bool
	reconnectWait time.Duration

	stats     *wire.Stats
	recv      *wire.Receiver
	sniff     *sniffer.Sniffer
	onPayload func(wire.Decoded)
	sink      *eventsink.Sink
	source    string

	writeMu sync.Mutex
	port    serial.Port

	done chan struct{}
	wg   sync.WaitGroup
}

// Config is what Open needs to know about the physical link, per spec.md
// §4.6/§6's serial{} parameter list.
type Config struct {
	PortName            string
	BaudRate            int
	DataBits            int
	Parity              string // none|odd|even|mark|space
	StopBits            string // 1|1.5|2
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	EnableAutoReconnect bool
	ReconnectDelay      time.Duration
}

func parseParity(s string) serial.Parity {
	switch strings.ToLower(s) {
	case "odd":
		return serial.OddParity
	case "even":
		return serial.EvenParity
	case "mark":
		return serial.MarkParity
	case "space":
		return serial.SpaceParity
	default:
		return serial.NoParity
	}
}

func parseStopBits(s string) serial.StopBits {
	switch s {
	case "1.5":
		return serial.OnePointFiveStopBits
	case "2":
		return serial.TwoStopBits
	default:
		return serial.OneStopBit
	}
}

// Open opens the configured port and starts the reader goroutine. onPayload
// is invoked, from the reader goroutine, for every payload the receive state
// machine accepts while the link is not quarantined. Per spec.md §4.12, sink
// receives one Incoming event per accepted payload, one Outgoing event per
// emitted frame, a Binary hex/ASCII dump of every raw buffer crossing the
// wire in either direction, and Service events for the connection lifecycle.
// source labels every emitted event (e.g. "serial").
func Open(ctx context.Context, cfg Config, stats *wire.Stats, sniff *sniffer.Sniffer, sink *eventsink.Sink, source string, onPayload func(wire.Decoded)) (*Transport, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   parseParity(cfg.Parity),
		StopBits: parseStopBits(cfg.StopBits),
	}

	t := &Transport{
		device:        cfg.PortName,
		mode:          mode,
		readTimeout:   cfg.ReadTimeout,
		autoReconnect: cfg.EnableAutoReconnect,
		reconnectWait: cfg.ReconnectDelay,
		stats:         stats,
		recv:          wire.NewReceiver(stats),
		sniff:         sniff,
		onPayload:     onPayload,
		sink:          sink,
		source:        source,
		done:          make(chan struct{}),
	}

	port, err := serial.Open(cfg.PortName, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "serialport: opening %s", cfg.PortName)
	}
	if t.readTimeout > 0 {
		if err := port.SetReadTimeout(t.readTimeout); err != nil {
			port.Close()
			return nil, errors.Wrap(err, "serialport: setting read timeout")
		}
	}
	t.port = port

	t.wg.Add(1)
	go t.readLoop(ctx)

	return t, nil
}

// Close stops the reader goroutine and releases the port.
func (t *Transport) Close() error {
	close(t.done)
	t.writeMu.Lock()
	err := t.port.Close()
	t.writeMu.Unlock()
	t.wg.Wait()
	return err
}

// Send frames payload and writes it to the port. Writes are suppressed,
// not queued, while the sniffer's quarantine is active — the firmware on
// the other end is presumed unable to process anything while panicking.
func (t *Transport) Send(payload []byte) error {
	if t.sniff != nil && t.sniff.Quarantined() {
		if t.sink != nil {
			t.sink.Service.Debugf("[%s] send suppressed: %v", t.source, ErrQuarantined)
		}
		return nil
	}

	frame, err := wire.Encode(payload)
	if err != nil {
		return errors.Wrap(err, "serialport: encoding frame")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	n, err := t.port.Write(frame)
	if err != nil {
		return errors.Wrap(err, "serialport: writing frame")
	}

	t.stats.AddFramesSent(1)
	t.stats.AddBytesOut(uint64(n))

	if t.sink != nil {
		t.sink.Outgoing.Debugf("[%s] %s", t.source, payload)
		t.sink.Binary.Debugf("[%s] out %d bytes\n%s", t.source, n, hex.Dump(frame[:n]))
	}
	return nil
}

func (t *Transport) readLoop(ctx context.Context) {
	defer t.wg.Done()

	buf := make([]byte, readBufferSize)
	for {
		select {
		case <-t.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		n, err := t.port.Read(buf)
		if err != nil {
			t.logf("read error: %v", err)
			if !t.autoReconnect {
				t.logf("auto-reconnect disabled, terminating reader loop")
				return
			}
			t.logf("reconnecting")
			if !t.reconnect(ctx) {
				return
			}
			continue
		}
		if n == 0 {
			continue
		}

		t.stats.AddBytesIn(uint64(n))
		chunk := buf[:n]

		if t.sink != nil {
			t.sink.Binary.Debugf("[%s] in %d bytes\n%s", t.source, n, hex.Dump(chunk))
		}

		if t.sniff != nil {
			t.sniff.Process(chunk)
			if t.sniff.Quarantined() {
				continue
			}
		}

		for _, d := range t.recv.Process(chunk) {
			if t.sink != nil {
				t.sink.Incoming.Debugf("[%s] %s", t.source, d.Data)
			}
			if t.onPayload != nil {
				t.onPayload(d)
			}
		}
	}
}

// reconnect retries opening the device until it succeeds or the transport
// is closed. Per spec.md §4.6, this only runs when EnableAutoReconnect is
// set; the caller terminates the reader loop instead otherwise. Returns
// false if the caller should give up entirely.
func (t *Transport) reconnect(ctx context.Context) bool {
	t.writeMu.Lock()
	t.port.Close()
	t.writeMu.Unlock()

	wait := t.reconnectWait
	if wait <= 0 {
		wait = 2 * time.Second
	}

	for {
		select {
		case <-t.done:
			return false
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}

		port, err := serial.Open(t.device, t.mode)
		if err != nil {
			t.logf("reconnect failed: %v", err)
			continue
		}
		if t.readTimeout > 0 {
			if err := port.SetReadTimeout(t.readTimeout); err != nil {
				t.logf("reconnect: setting read timeout failed: %v", err)
			}
		}

		t.writeMu.Lock()
		t.port = port
		t.writeMu.Unlock()
		t.logf("reconnected to %s", t.device)
		return true
	}
}

func (t *Transport) logf(format string, args ...interface{}) {
	if t.sink == nil {
		return
	}
	t.sink.Service.Warnf(format, args...)
}
