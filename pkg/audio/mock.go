package audio

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/librescoot/audio-mixer-bridge/pkg/wire"
)

// Mock is an in-memory Backend for tests and for running the bridge without
// a real OS audio subsystem wired in.
type Mock struct {
	mu       sync.Mutex
	sessions map[int]wire.SessionSnapshot
	defaults map[defaultKey]wire.DefaultDeviceRecord
	byName   map[string]wire.DefaultDeviceRecord

	// Logger receives a debug event for every process-name filter entry
	// skipped for an invalid regex. May be left nil.
	Logger *log.Logger
}

type defaultKey struct {
	flow wire.DataFlow
	role wire.DeviceRole
}

// NewMock builds an empty Mock backend.
func NewMock() *Mock {
	return &Mock{
		sessions: make(map[int]wire.SessionSnapshot),
		defaults: make(map[defaultKey]wire.DefaultDeviceRecord),
		byName:   make(map[string]wire.DefaultDeviceRecord),
	}
}

// Seed installs a session directly, for test setup.
func (m *Mock) Seed(s wire.SessionSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ProcessID] = s
}

// SeedDefault installs a default device record, for test setup.
func (m *Mock) SeedDefault(flow wire.DataFlow, role wire.DeviceRole, d wire.DefaultDeviceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.DataFlow, d.Role = flow, role
	m.defaults[defaultKey{flow, role}] = d
	m.byName[d.FriendlyName] = d
}

func (m *Mock) ListSessions(f Filter) ([]wire.SessionSnapshot, error) {
	matcher := f.Compile(m.Logger)

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]wire.SessionSnapshot, 0, len(m.sessions))
	for _, s := range m.sessions {
		if matcher.Match(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Mock) SetSessionVolume(processID int, volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[processID]
	if !ok {
		return fmt.Errorf("audio: no session for pid %d", processID)
	}
	s.Volume = volume
	m.sessions[processID] = s
	return nil
}

func (m *Mock) SetSessionMute(processID int, mute bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[processID]
	if !ok {
		return fmt.Errorf("audio: no session for pid %d", processID)
	}
	s.Mute = mute
	m.sessions[processID] = s
	return nil
}

func (m *Mock) GetDefaultDevice(flow wire.DataFlow, role wire.DeviceRole) (wire.DefaultDeviceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.defaults[defaultKey{flow, role}]
	if !ok {
		return wire.DefaultDeviceRecord{}, fmt.Errorf("audio: no default device for %s/%s", flow, role)
	}
	return d, nil
}

func (m *Mock) SetDefaultVolume(flow wire.DataFlow, role wire.DeviceRole, volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := defaultKey{flow, role}
	d, ok := m.defaults[key]
	if !ok {
		return fmt.Errorf("audio: no default device for %s/%s", flow, role)
	}
	d.Volume = volume
	m.defaults[key] = d
	m.byName[d.FriendlyName] = d
	return nil
}

func (m *Mock) SetDefaultMute(flow wire.DataFlow, role wire.DeviceRole, mute bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := defaultKey{flow, role}
	d, ok := m.defaults[key]
	if !ok {
		return fmt.Errorf("audio: no default device for %s/%s", flow, role)
	}
	d.Mute = mute
	m.defaults[key] = d
	m.byName[d.FriendlyName] = d
	return nil
}

func (m *Mock) SetDeviceVolumeByName(friendlyName string, volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byName[friendlyName]
	if !ok {
		return fmt.Errorf("audio: no device named %q", friendlyName)
	}
	d.Volume = volume
	m.byName[friendlyName] = d
	m.defaults[defaultKey{d.DataFlow, d.Role}] = d
	return nil
}

func (m *Mock) SetDeviceMuteByName(friendlyName string, mute bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byName[friendlyName]
	if !ok {
		return fmt.Errorf("audio: no device named %q", friendlyName)
	}
	d.Mute = mute
	m.byName[friendlyName] = d
	m.defaults[defaultKey{d.DataFlow, d.Role}] = d
	return nil
}
