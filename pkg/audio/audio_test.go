package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librescoot/audio-mixer-bridge/pkg/wire"
)

func Test_Mock_ListSessions_substringFilter(t *testing.T) {
	m := NewMock()
	m.Seed(wire.SessionSnapshot{ProcessID: 1, ProcessName: "chrome.exe", State: wire.SessionActive})
	m.Seed(wire.SessionSnapshot{ProcessID: 2, ProcessName: "spotify.exe", State: wire.SessionActive})

	out, err := m.ListSessions(Filter{ProcessNameFilters: []string{"chrome"}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "chrome.exe", out[0].ProcessName)
}

func Test_Mock_ListSessions_regexFilter(t *testing.T) {
	m := NewMock()
	m.Seed(wire.SessionSnapshot{ProcessID: 1, ProcessName: "chrome.exe", State: wire.SessionActive})
	m.Seed(wire.SessionSnapshot{ProcessID: 2, ProcessName: "spotify.exe", State: wire.SessionActive})

	out, err := m.ListSessions(Filter{ProcessNameFilters: []string{"^chrome"}, UseRegexFiltering: true})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "chrome.exe", out[0].ProcessName)
}

func Test_Mock_ListSessions_multiplePatternsAreOred(t *testing.T) {
	m := NewMock()
	m.Seed(wire.SessionSnapshot{ProcessID: 1, ProcessName: "chrome.exe", State: wire.SessionActive})
	m.Seed(wire.SessionSnapshot{ProcessID: 2, ProcessName: "spotify.exe", State: wire.SessionActive})
	m.Seed(wire.SessionSnapshot{ProcessID: 3, ProcessName: "notepad.exe", State: wire.SessionActive})

	out, err := m.ListSessions(Filter{ProcessNameFilters: []string{"chrome", "spotify"}})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func Test_Mock_ListSessions_stateFilter(t *testing.T) {
	m := NewMock()
	m.Seed(wire.SessionSnapshot{ProcessID: 1, ProcessName: "a", State: wire.SessionActive})
	m.Seed(wire.SessionSnapshot{ProcessID: 2, ProcessName: "b", State: wire.SessionExpired})

	out, err := m.ListSessions(Filter{State: StateActive})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].ProcessID)
}

func Test_Mock_ListSessions_includeAllDevicesBypassesOtherFilters(t *testing.T) {
	m := NewMock()
	m.Seed(wire.SessionSnapshot{ProcessID: 1, ProcessName: "a", State: wire.SessionExpired})

	out, err := m.ListSessions(Filter{State: StateActive, IncludeAllDevices: true})
	require.NoError(t, err)
	assert.Len(t, out, 1, "includeAllDevices must return sessions even when they fail the state filter")
}

func Test_Mock_SetSessionVolume_unknownPidErrors(t *testing.T) {
	m := NewMock()
	err := m.SetSessionVolume(999, 0.5)
	assert.Error(t, err)
}

func Test_Mock_DefaultDeviceByNameStaysConsistent(t *testing.T) {
	m := NewMock()
	m.SeedDefault(wire.FlowRender, wire.RoleConsole, wire.DefaultDeviceRecord{FriendlyName: "Speakers", Volume: 0.8})

	require.NoError(t, m.SetDeviceVolumeByName("Speakers", 0.3))

	d, err := m.GetDefaultDevice(wire.FlowRender, wire.RoleConsole)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, d.Volume, 0.0001)
}

// Per spec.md §4.8, an invalid regex entry is logged and skipped rather
// than failing the whole filter — the filter then behaves as if that
// entry were absent, so a session that would otherwise be excluded is
// still returned when every pattern is invalid.
func Test_Filter_invalidRegexIsSkippedNotFatal(t *testing.T) {
	m := NewMock()
	m.Seed(wire.SessionSnapshot{ProcessID: 1, ProcessName: "chrome.exe", State: wire.SessionActive})

	out, err := m.ListSessions(Filter{ProcessNameFilters: []string{"("}, UseRegexFiltering: true})
	require.NoError(t, err)
	assert.Len(t, out, 1, "an all-invalid pattern list must fail open, not exclude everything")
}

func Test_Filter_mixOfValidAndInvalidRegexKeepsValidOne(t *testing.T) {
	m := NewMock()
	m.Seed(wire.SessionSnapshot{ProcessID: 1, ProcessName: "chrome.exe", State: wire.SessionActive})
	m.Seed(wire.SessionSnapshot{ProcessID: 2, ProcessName: "spotify.exe", State: wire.SessionActive})

	out, err := m.ListSessions(Filter{ProcessNameFilters: []string{"(", "^chrome"}, UseRegexFiltering: true})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "chrome.exe", out[0].ProcessName)
}
