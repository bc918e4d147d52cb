package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Quarantine_triggersOnBanner(t *testing.T) {
	s := New()
	triggered := false
	s.OnQuarantine = func() { triggered = true }

	s.Process([]byte("booting...\n"))
	assert.False(t, s.Quarantined())

	s.Process([]byte("Guru Meditation Error: Core 0 panic'ed\n"))
	assert.True(t, s.Quarantined())
	assert.True(t, triggered)
}

func Test_Quarantine_isOneWay(t *testing.T) {
	s := New()
	calls := 0
	s.OnQuarantine = func() { calls++ }

	s.Process([]byte("Guru Meditation Error\n"))
	s.Process([]byte("Guru Meditation Error\n"))

	assert.Equal(t, 1, calls)
	assert.True(t, s.Quarantined())
}

func Test_ELFTrailer_onlyFiresAfterQuarantine(t *testing.T) {
	s := New()
	var trailer string
	s.OnELFTrailer = func(line string) { trailer = line }

	s.Process([]byte("ELF file SHA256: deadbeef\n"))
	assert.Empty(t, trailer, "trailer outside quarantine should be ignored")

	s.Process([]byte("Guru Meditation Error\nELF file SHA256: cafef00d\n"))
	assert.Contains(t, trailer, "cafef00d")
}

func Test_Process_handlesSplitLines(t *testing.T) {
	s := New()
	triggered := false
	s.OnQuarantine = func() { triggered = true }

	s.Process([]byte("Guru Medi"))
	assert.False(t, triggered)
	s.Process([]byte("tation Error\n"))
	assert.True(t, triggered)
}
