package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// P6: a frame that stalls mid-delivery past FrameTimeout is abandoned, its
// bytes never leak into the next frame, and the receiver recovers cleanly.
func Test_timeout_recoversToNextFrame(t *testing.T) {
	clock := time.Unix(0, 0)
	recv := NewReceiverWithClock(NewStats(), func() time.Time { return clock })

	good, err := Encode([]byte("ok"))
	require.NoError(t, err)

	stale := []byte{StartMarker, 0x05, 0x00, 0x00, 0x00, 0xAA, 0xBB, 0x01, 'h', 'e'}
	out := recv.Process(stale)
	assert.Empty(t, out)

	clock = clock.Add(FrameTimeout + time.Millisecond)

	out = recv.Process(good)
	require.Len(t, out, 1)
	assert.Equal(t, []byte("ok"), out[0].Data)
}

func Test_timeout_incrementsStat(t *testing.T) {
	clock := time.Unix(0, 0)
	stats := NewStats()
	recv := NewReceiverWithClock(stats, func() time.Time { return clock })

	recv.Process([]byte{StartMarker, 0x05})
	clock = clock.Add(FrameTimeout + time.Millisecond)
	recv.Process([]byte{0x00})

	assert.Equal(t, uint64(1), stats.TimeoutErrors())
}

func Test_length_mismatch_isFramingError(t *testing.T) {
	stats := NewStats()
	recv := NewReceiverWithClock(stats, time.Now)

	// declares length 3 but only supplies 2 payload bytes before the end marker
	frame := []byte{StartMarker, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 'h', 'i', EndMarker}
	out := recv.Process(frame)

	assert.Empty(t, out)
	assert.Equal(t, uint64(1), stats.FramingErrors())
}

func Test_unknownTag_isFramingError(t *testing.T) {
	stats := NewStats()
	recv := NewReceiverWithClock(stats, time.Now)

	payload := []byte("hi")
	crc := CRC16(payload)

	frame := []byte{StartMarker, 0x02, 0x00, 0x00, 0x00, byte(crc), byte(crc >> 8), 0xEE}
	frame = append(frame, payload...)
	frame = append(frame, EndMarker)

	out := recv.Process(frame)
	assert.Empty(t, out)
	assert.Equal(t, uint64(1), stats.FramingErrors())
}

func Test_zeroLengthInput_isNoop(t *testing.T) {
	recv := NewReceiver(NewStats())
	assert.Empty(t, recv.Process(nil))
	assert.Empty(t, recv.Process([]byte{}))
}

// A declared length of 1 but a payload delivered entirely as escape pairs
// must overflow on the first escaped byte past declaredLen, not grow the buffer
// waiting for an unescaped end marker.
func Test_overflow_checkedOnEscapedBytesToo(t *testing.T) {
	stats := NewStats()
	recv := NewReceiverWithClock(stats, time.Now)

	frame := []byte{StartMarker, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}
	// two escape pairs (4 raw bytes) decoding to 2 payload bytes, declared length is 1
	frame = append(frame, EscapeMarker, StartMarker^EscapeMask)
	frame = append(frame, EscapeMarker, StartMarker^EscapeMask)
	frame = append(frame, EndMarker)

	out := recv.Process(frame)
	assert.Empty(t, out)
	assert.Equal(t, uint64(1), stats.OverflowErrors())
	assert.Equal(t, uint64(0), stats.FramingErrors())
}
