// Package bridge is the broadcast orchestrator (C9) and its handler set
// (C10): it turns audio.Backend state into STATUS_MESSAGE broadcasts on a
// timer, on request, and on debounced session change, and turns inbound
// commands into audio.Backend calls.
package bridge

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/librescoot/audio-mixer-bridge/pkg/assets"
	"github.com/librescoot/audio-mixer-bridge/pkg/audio"
	"github.com/librescoot/audio-mixer-bridge/pkg/dispatch"
	"github.com/librescoot/audio-mixer-bridge/pkg/wire"
)

// Sender is the subset of the transport adapter the orchestrator needs:
// hand it a JSON document and it frames and writes it.
type Sender interface {
	Send(payload []byte) error
}

// defaultFlow/defaultRole select which OS default device SET_VOLUME affects
// when a command names no process and no device: the system output.
const (
	defaultFlow = wire.FlowRender
	defaultRole = wire.RoleConsole
)

// Orchestrator is the single owner of when a STATUS_MESSAGE goes out and
// what an inbound command does to the audio backend.
type Orchestrator struct {
	deviceID string
	backend  audio.Backend
	assets   *assets.Provider
	sender   Sender
	logger   *log.Logger
	now      func() time.Time

	mu           sync.Mutex
	lastSessHash string
}

// Config bundles an Orchestrator's collaborators.
type Config struct {
	DeviceID string
	Backend  audio.Backend
	Assets   *assets.Provider
	Sender   Sender
	Logger   *log.Logger
}

// New builds an Orchestrator from cfg.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		deviceID: cfg.DeviceID,
		backend:  cfg.Backend,
		assets:   cfg.Assets,
		sender:   cfg.Sender,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// RegisterHandlers wires every inbound command type this orchestrator
// understands into d (C10).
func (o *Orchestrator) RegisterHandlers(d *dispatch.Dispatcher) {
	d.Register(wire.MessageTypeGetStatus, o.handleGetStatus)
	d.Register(wire.MessageTypeSetVolume, o.handleSetVolume)
	d.Register(wire.MessageTypePingRequest, o.handlePingRequest)
	d.Register(wire.MessageTypeAssetRequest, o.handleAssetRequest)
}

// BroadcastStatus builds a StatusBundle from the current backend state and
// sends it as a STATUS_MESSAGE, tagging it with reason and, if this
// broadcast answers a specific inbound request, that request's id.
func (o *Orchestrator) BroadcastStatus(reason wire.BroadcastReason, originatingRequestID string) error {
	sessions, err := o.backend.ListSessions(audio.Filter{})
	if err != nil {
		return errors.Wrap(err, "bridge: listing sessions")
	}

	var def *wire.DefaultDeviceRecord
	if d, err := o.backend.GetDefaultDevice(defaultFlow, defaultRole); err == nil {
		def = &d
	}

	bundle := wire.StatusBundle{
		MessageType:          wire.MessageTypeStatusMessage.WireName(),
		DeviceID:             o.deviceID,
		TimestampUnixMs:      o.now().UnixMilli(),
		Sessions:             sessions,
		DefaultDevice:        def,
		Reason:               reason,
		OriginatingRequestID: originatingRequestID,
	}

	return o.send(bundle)
}

// PollSessionChange compares the current session list's fingerprint to the
// last broadcast one and, if different, emits a debounced SESSION_CHANGE
// status broadcast. Callers are expected to invoke this on a short ticker;
// the hash comparison itself is the debounce.
func (o *Orchestrator) PollSessionChange() error {
	sessions, err := o.backend.ListSessions(audio.Filter{})
	if err != nil {
		return errors.Wrap(err, "bridge: listing sessions")
	}

	hash := fingerprint(sessions)

	o.mu.Lock()
	changed := hash != o.lastSessHash
	o.lastSessHash = hash
	o.mu.Unlock()

	if !changed {
		return nil
	}
	return o.BroadcastStatus(wire.ReasonSessionChange, "")
}

func fingerprint(sessions []wire.SessionSnapshot) string {
	data, _ := json.Marshal(sessions)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}

func (o *Orchestrator) send(v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "bridge: marshaling outbound message")
	}
	if err := o.sender.Send(raw); err != nil {
		return errors.Wrap(err, "bridge: sending")
	}
	return nil
}
