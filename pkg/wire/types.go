package wire

// MessageType is the authoritative, enum-keyed form of the wire-level
// `messageType` string. spec.md §9 notes that the source this protocol was
// modeled on carries two parallel keying schemes (string-keyed and
// enum-keyed); this implementation exposes exactly one authoritative form —
// this enum — and maps the wire string to it once, at decode time, in
// TypeFromWireName / MessageType.WireName below.
type MessageType int

const (
	MessageTypeUnknown MessageType = iota
	MessageTypeStatusUpdate
	MessageTypeStatusMessage
	MessageTypeGetStatus
	MessageTypeAssetRequest
	MessageTypeAssetResponse
	MessageTypeSessionUpdate
	MessageTypeSetVolume
	MessageTypePingRequest
	MessageTypePongResponse
)

var wireNames = map[MessageType]string{
	MessageTypeStatusUpdate:  "STATUS_UPDATE",
	MessageTypeStatusMessage: "STATUS_MESSAGE",
	MessageTypeGetStatus:     "GET_STATUS",
	MessageTypeAssetRequest:  "ASSET_REQUEST",
	MessageTypeAssetResponse: "ASSET_RESPONSE",
	MessageTypeSessionUpdate: "SESSION_UPDATE",
	MessageTypeSetVolume:     "SET_VOLUME",
	MessageTypePingRequest:   "PING_REQUEST",
	MessageTypePongResponse:  "PONG_RESPONSE",
}

var namesToWireType map[string]MessageType

func init() {
	namesToWireType = make(map[string]MessageType, len(wireNames))
	for t, name := range wireNames {
		namesToWireType[name] = t
	}
}

// WireName returns the on-wire string for a MessageType, or "" if unknown.
func (t MessageType) WireName() string {
	return wireNames[t]
}

func (t MessageType) String() string {
	if name, ok := wireNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// TypeFromWireName maps the wire string to its authoritative MessageType.
// An unrecognized string maps to MessageTypeUnknown; callers treat that as
// an unknown-type drop per spec.md §7.
func TypeFromWireName(name string) MessageType {
	if t, ok := namesToWireType[name]; ok {
		return t
	}
	return MessageTypeUnknown
}

// SessionState is the lifecycle state of an audio session.
type SessionState string

const (
	SessionInactive SessionState = "inactive"
	SessionActive   SessionState = "active"
	SessionExpired  SessionState = "expired"
)

// DataFlow selects render or capture endpoints.
type DataFlow string

const (
	FlowRender  DataFlow = "render"
	FlowCapture DataFlow = "capture"
	FlowBoth    DataFlow = "both"
)

// DeviceRole selects the (flow, role) pair an OS designates a default for.
type DeviceRole string

const (
	RoleConsole        DeviceRole = "console"
	RoleMultimedia     DeviceRole = "multimedia"
	RoleCommunications DeviceRole = "communications"
)

// BroadcastReason categorizes why a StatusBundle was emitted.
type BroadcastReason string

const (
	ReasonStartup        BroadcastReason = "startup"
	ReasonPeriodic        BroadcastReason = "periodic"
	ReasonSessionChange  BroadcastReason = "session-change"
	ReasonStatusRequest  BroadcastReason = "status-request"
	ReasonUpdateResponse BroadcastReason = "update-response"
	ReasonUnknown        BroadcastReason = "unknown"
)

// SessionSnapshot describes one active audio session.
type SessionSnapshot struct {
	ProcessID       int          `json:"processId"`
	ProcessName     string       `json:"processName"`
	DisplayName     string       `json:"displayName"`
	Volume          float64      `json:"volume"`
	Mute            bool         `json:"mute"`
	State           SessionState `json:"state"`
	IconPath        string       `json:"iconPath,omitempty"`
	LastUpdateUnix  int64        `json:"updatedAt"`
}

// DefaultDeviceRecord describes the OS default endpoint for a (flow, role).
type DefaultDeviceRecord struct {
	FriendlyName string     `json:"friendlyName"`
	Volume       float64    `json:"volume"`
	Mute         bool       `json:"mute"`
	DataFlow     DataFlow   `json:"dataFlow"`
	Role         DeviceRole `json:"role"`
}

// StatusBundle is the document sent out as STATUS_MESSAGE.
type StatusBundle struct {
	MessageType           string               `json:"messageType"`
	DeviceID              string               `json:"deviceId"`
	TimestampUnixMs        int64                `json:"timestamp"`
	Sessions               []SessionSnapshot    `json:"sessions"`
	DefaultDevice           *DefaultDeviceRecord `json:"defaultDevice,omitempty"`
	Reason                  BroadcastReason      `json:"reason"`
	OriginatingRequestID    string               `json:"originatingRequestId,omitempty"`
	OriginatingDeviceID     string               `json:"originatingDeviceId,omitempty"`
}

// CommandRequest is the parsed form of SET_VOLUME and related command tags.
type CommandRequest struct {
	MessageType        string   `json:"messageType"`
	ProcessID          *int     `json:"processId,omitempty"`
	ProcessName        *string  `json:"processName,omitempty"`
	DeviceFriendlyName *string  `json:"deviceFriendlyName,omitempty"`
	Volume             *float64 `json:"volume,omitempty"`
	Mute               *bool    `json:"mute,omitempty"`
	RequestID          string   `json:"requestId"`
	OriginatingDeviceID string  `json:"originatingDeviceId,omitempty"`
}

// PingRequest / PongResponse are the keep-alive documents.
type PingRequest struct {
	MessageType string `json:"messageType"`
	RequestID   string `json:"requestId"`
}

type PongResponse struct {
	MessageType   string `json:"messageType"`
	RequestID     string `json:"requestId"`
	TimestampUnixMs int64  `json:"timestamp"`
}

// AssetRequest / AssetResponse carry application icon bytes.
type AssetRequest struct {
	MessageType string `json:"messageType"`
	ProcessName string `json:"processName"`
	RequestID   string `json:"requestId,omitempty"`
}

type AssetResponse struct {
	MessageType  string `json:"messageType"`
	ProcessName  string `json:"processName"`
	AssetData    string `json:"assetData,omitempty"` // base64
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	RequestID    string `json:"requestId,omitempty"`
}

// envelope has the shape of the messageType discriminator every payload
// document carries. Nothing in this module decodes into it: dispatch.Dispatch
// uses an equivalent anonymous struct of its own.
type envelope struct {
	MessageType string `json:"messageType"`
}
