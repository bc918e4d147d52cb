// Package audio defines the contract this bridge expects from an
// OS-specific audio backend (C8). Session enumeration and volume/mute
// control are platform concerns external to this module's scope; only the
// interface, its filter types, and a test-friendly in-memory implementation
// live here.
package audio

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/librescoot/audio-mixer-bridge/pkg/wire"
)

// Backend is everything the bridge needs from the host's audio subsystem.
// A real implementation wraps WASAPI, PulseAudio/PipeWire, or CoreAudio;
// this module ships only Mock, used by the tests and by cmd/audio-mixer-bridge
// in place of a real backend.
type Backend interface {
	ListSessions(Filter) ([]wire.SessionSnapshot, error)
	SetSessionVolume(processID int, volume float64) error
	SetSessionMute(processID int, mute bool) error

	GetDefaultDevice(wire.DataFlow, wire.DeviceRole) (wire.DefaultDeviceRecord, error)
	SetDefaultVolume(wire.DataFlow, wire.DeviceRole, float64) error
	SetDefaultMute(wire.DataFlow, wire.DeviceRole, bool) error

	SetDeviceVolumeByName(friendlyName string, volume float64) error
	SetDeviceMuteByName(friendlyName string, mute bool) error
}

// StateFilter restricts ListSessions to sessions in a given lifecycle
// state, or "all" for no restriction.
type StateFilter string

const (
	StateAll      StateFilter = "all"
	StateInactive StateFilter = "inactive"
	StateActive   StateFilter = "active"
	StateExpired  StateFilter = "expired"
)

// Filter narrows ListSessions, per spec.md §4.8/§9. A zero-value Filter
// matches every session.
type Filter struct {
	DataFlow wire.DataFlow
	Role     wire.DeviceRole

	// State restricts by lifecycle state; "" and StateAll both mean
	// unrestricted.
	State StateFilter

	// IncludeAllDevices bypasses State and ProcessNameFilters entirely —
	// every session is returned regardless of the other fields.
	IncludeAllDevices bool

	// ProcessNameFilters is a list of substrings (or, when
	// UseRegexFiltering is set, regular expressions); a session matches if
	// ANY entry matches. An empty list means unrestricted.
	ProcessNameFilters []string
	UseRegexFiltering  bool
}

// Compile compiles f into a Matcher. Per spec.md §4.8, an invalid regex
// entry (only possible when UseRegexFiltering is set) is logged, if logger
// is non-nil, and then skipped — the filter behaves as if that one entry
// were absent, rather than failing the whole filter. Compile therefore
// never errors.
func (f Filter) Compile(logger *log.Logger) Matcher {
	m := Matcher{
		state:             f.State,
		includeAllDevices: f.IncludeAllDevices,
	}

	for _, pattern := range f.ProcessNameFilters {
		if !f.UseRegexFiltering {
			m.substrings = append(m.substrings, pattern)
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			if logger != nil {
				logger.Debugf("audio: skipping invalid process-name regex %q: %v", pattern, err)
			}
			continue
		}
		m.regexes = append(m.regexes, re)
	}

	return m
}

// Matcher is a compiled Filter, cheap to apply per-session.
type Matcher struct {
	state             StateFilter
	includeAllDevices bool
	substrings        []string
	regexes           []*regexp.Regexp
}

// Match reports whether session satisfies the compiled filter.
func (m Matcher) Match(s wire.SessionSnapshot) bool {
	if m.includeAllDevices {
		return true
	}

	if m.state != "" && m.state != StateAll && string(s.State) != string(m.state) {
		return false
	}

	if len(m.substrings) == 0 && len(m.regexes) == 0 {
		return true
	}

	for _, sub := range m.substrings {
		if strings.Contains(s.ProcessName, sub) {
			return true
		}
	}
	for _, re := range m.regexes {
		if re.MatchString(s.ProcessName) {
			return true
		}
	}
	return false
}
