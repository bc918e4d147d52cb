package bridge

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/librescoot/audio-mixer-bridge/pkg/audio"
	"github.com/librescoot/audio-mixer-bridge/pkg/wire"
)

func (o *Orchestrator) handleGetStatus(raw []byte) error {
	var req wire.CommandRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return errors.Wrap(err, "bridge: parsing GET_STATUS")
	}
	return o.BroadcastStatus(wire.ReasonStatusRequest, req.RequestID)
}

func (o *Orchestrator) handlePingRequest(raw []byte) error {
	var req wire.PingRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return errors.Wrap(err, "bridge: parsing PING_REQUEST")
	}

	resp := wire.PongResponse{
		MessageType:     wire.MessageTypePongResponse.WireName(),
		RequestID:       req.RequestID,
		TimestampUnixMs: o.now().UnixMilli(),
	}
	return o.send(resp)
}

func (o *Orchestrator) handleAssetRequest(raw []byte) error {
	var req wire.AssetRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return errors.Wrap(err, "bridge: parsing ASSET_REQUEST")
	}

	resp := wire.AssetResponse{
		MessageType: wire.MessageTypeAssetResponse.WireName(),
		ProcessName: req.ProcessName,
		RequestID:   req.RequestID,
	}

	data, err := o.assets.Resolve(req.ProcessName)
	if err != nil {
		resp.Success = false
		resp.ErrorMessage = err.Error()
	} else {
		resp.Success = true
		resp.AssetData = data
	}

	return o.send(resp)
}

// handleSetVolume applies a SET_VOLUME command with the tie-break order
// fixed by spec.md §9: a named process id wins over a named process name,
// which wins over a named device, which falls back to the system default
// output. Exactly one branch of the command is ever honored.
func (o *Orchestrator) handleSetVolume(raw []byte) error {
	var req wire.CommandRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return errors.Wrap(err, "bridge: parsing SET_VOLUME")
	}

	switch {
	case req.ProcessID != nil:
		return o.applyToSession(*req.ProcessID, req)
	case req.ProcessName != nil:
		return o.applyToSessionByName(*req.ProcessName, req)
	case req.DeviceFriendlyName != nil:
		return o.applyToDeviceByName(*req.DeviceFriendlyName, req)
	default:
		return o.applyToDefaultDevice(req)
	}
}

func (o *Orchestrator) applyToSession(pid int, req wire.CommandRequest) error {
	if req.Volume != nil {
		if err := o.backend.SetSessionVolume(pid, *req.Volume); err != nil {
			return errors.Wrap(err, "bridge: setting session volume")
		}
	}
	if req.Mute != nil {
		if err := o.backend.SetSessionMute(pid, *req.Mute); err != nil {
			return errors.Wrap(err, "bridge: setting session mute")
		}
	}
	return o.BroadcastStatus(wire.ReasonUpdateResponse, req.RequestID)
}

// applyToSessionByName resolves name to a single session. Per spec.md
// §4.9's tie-break policy, when multiple sessions share the name, the one
// with the lowest process id is selected.
func (o *Orchestrator) applyToSessionByName(name string, req wire.CommandRequest) error {
	sessions, err := o.backend.ListSessions(audio.Filter{})
	if err != nil {
		return errors.Wrap(err, "bridge: listing sessions")
	}

	found := false
	lowest := 0
	for _, s := range sessions {
		if s.ProcessName != name {
			continue
		}
		if !found || s.ProcessID < lowest {
			lowest = s.ProcessID
			found = true
		}
	}
	if !found {
		return errors.Errorf("bridge: no session named %q", name)
	}
	return o.applyToSession(lowest, req)
}

func (o *Orchestrator) applyToDeviceByName(name string, req wire.CommandRequest) error {
	if req.Volume != nil {
		if err := o.backend.SetDeviceVolumeByName(name, *req.Volume); err != nil {
			return errors.Wrap(err, "bridge: setting device volume")
		}
	}
	if req.Mute != nil {
		if err := o.backend.SetDeviceMuteByName(name, *req.Mute); err != nil {
			return errors.Wrap(err, "bridge: setting device mute")
		}
	}
	return o.BroadcastStatus(wire.ReasonUpdateResponse, req.RequestID)
}

func (o *Orchestrator) applyToDefaultDevice(req wire.CommandRequest) error {
	if req.Volume != nil {
		if err := o.backend.SetDefaultVolume(defaultFlow, defaultRole, *req.Volume); err != nil {
			return errors.Wrap(err, "bridge: setting default volume")
		}
	}
	if req.Mute != nil {
		if err := o.backend.SetDefaultMute(defaultFlow, defaultRole, *req.Mute); err != nil {
			return errors.Wrap(err, "bridge: setting default mute")
		}
	}
	return o.BroadcastStatus(wire.ReasonUpdateResponse, req.RequestID)
}
