package wire

import (
	"encoding/binary"
	"fmt"
)

// Wire constants, frozen per spec.md §6.
const (
	StartMarker  byte = 0x7E
	EndMarker    byte = 0x7F
	EscapeMarker byte = 0x7D
	EscapeMask   byte = 0x20

	// MaxPayload is the largest unescaped payload a frame may declare.
	MaxPayload = 4096

	// frameTagTextDocument is the only tag value this protocol version emits.
	frameTagTextDocument byte = 0x01

	// headerLen is the byte count of length+crc+tag, i.e. everything between
	// the start marker and the start of the escaped payload.
	headerLen = 4 + 2 + 1
)

// Encode builds a complete on-wire frame for payload. Refuses empty payloads
// and payloads exceeding MaxPayload, per spec.md §4.2.
func Encode(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("wire: refusing to encode empty payload")
	}
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("wire: payload of %d bytes exceeds max %d", len(payload), MaxPayload)
	}

	crc := CRC16(payload)

	out := make([]byte, 0, 1+headerLen+len(payload)*2+1)
	out = append(out, StartMarker)

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	out = append(out, lenBuf[:]...)

	var crcBuf [2]byte
	binary.LittleEndian.PutUint16(crcBuf[:], crc)
	out = append(out, crcBuf[:]...)

	out = append(out, frameTagTextDocument)
	out = append(out, escape(payload)...)
	out = append(out, EndMarker)

	return out, nil
}

// escape replaces every occurrence of the three reserved marker bytes with
// the two-byte escape sequence {EscapeMarker, byte XOR EscapeMask}.
func escape(payload []byte) []byte {
	out := make([]byte, 0, len(payload))
	for _, b := range payload {
		switch b {
		case StartMarker, EndMarker, EscapeMarker:
			out = append(out, EscapeMarker, b^EscapeMask)
		default:
			out = append(out, b)
		}
	}
	return out
}
