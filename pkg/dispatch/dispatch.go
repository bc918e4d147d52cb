// Package dispatch is the message-type dispatcher (C5): it turns a decoded
// wire payload into a call against whichever handler was registered for its
// messageType, and is silent — never an error return, never a panic — about
// payloads that fail to parse or name an unregistered type, per spec.md §7.
package dispatch

import (
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/librescoot/audio-mixer-bridge/pkg/wire"
)

// Handler processes one decoded payload's raw JSON bytes for a given
// MessageType. Handlers parse the bytes into their own concrete struct.
type Handler func(raw []byte) error

// Dispatcher routes decoded payloads to registered Handlers by messageType.
// Not safe for concurrent Register calls racing Dispatch; Register is meant
// to run once during wiring, before the transport adapter starts its reader
// goroutine.
type Dispatcher struct {
	handlers map[wire.MessageType]Handler
	logger   *log.Logger
}

// New builds an empty Dispatcher. logger may be nil, in which case
// dispatch failures are dropped silently rather than logged.
func New(logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[wire.MessageType]Handler),
		logger:   logger,
	}
}

// Register installs handler for t, replacing any previously registered
// handler for the same type (last writer wins) and logging a debug event
// on replacement. A zero/unknown type or a nil handler is refused rather
// than installed, since Dispatch would later call a nil Handler and panic.
func (d *Dispatcher) Register(t wire.MessageType, handler Handler) {
	if t == wire.MessageTypeUnknown || handler == nil {
		d.debugf("dispatch: refusing to register handler for type %s (nil=%v)", t, handler == nil)
		return
	}
	if _, exists := d.handlers[t]; exists {
		d.debugf("dispatch: replacing handler for %s", t)
	}
	d.handlers[t] = handler
}

// Dispatch parses raw as a decoded frame payload, resolves its messageType,
// and invokes the matching handler in order of arrival (P9). Unparseable
// payloads and payloads naming an unregistered or unknown type are logged
// at debug level, if a logger is present, and otherwise dropped.
func (d *Dispatcher) Dispatch(raw []byte) {
	var env struct {
		MessageType string `json:"messageType"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		d.debugf("dispatch: payload did not parse as JSON: %v", err)
		return
	}

	t := wire.TypeFromWireName(env.MessageType)
	if t == wire.MessageTypeUnknown {
		d.debugf("dispatch: unrecognized messageType %q", env.MessageType)
		return
	}

	handler, ok := d.handlers[t]
	if !ok {
		d.debugf("dispatch: no handler registered for %s", t)
		return
	}

	if err := handler(raw); err != nil {
		d.debugf("dispatch: handler for %s returned error: %v", t, errors.Wrap(err, "handle"))
	}
}

func (d *Dispatcher) debugf(format string, args ...interface{}) {
	if d.logger == nil {
		return
	}
	d.logger.Debugf(format, args...)
}
