package dispatch

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librescoot/audio-mixer-bridge/pkg/wire"
)

func Test_Dispatch_routesByMessageType(t *testing.T) {
	d := New(nil)

	var got wire.PingRequest
	d.Register(wire.MessageTypePingRequest, func(raw []byte) error {
		return json.Unmarshal(raw, &got)
	})

	raw, err := json.Marshal(wire.PingRequest{MessageType: "PING_REQUEST", RequestID: "r1"})
	require.NoError(t, err)

	d.Dispatch(raw)

	assert.Equal(t, "r1", got.RequestID)
}

func Test_Dispatch_unknownTypeIsSilentlyDropped(t *testing.T) {
	d := New(nil)
	called := false
	d.Register(wire.MessageTypePingRequest, func(raw []byte) error {
		called = true
		return nil
	})

	assert.NotPanics(t, func() {
		d.Dispatch([]byte(`{"messageType":"NOT_A_REAL_TYPE"}`))
	})
	assert.False(t, called)
}

func Test_Dispatch_malformedJSONIsSilentlyDropped(t *testing.T) {
	d := New(nil)
	assert.NotPanics(t, func() {
		d.Dispatch([]byte(`not json at all`))
	})
}

func Test_Dispatch_handlerErrorDoesNotPropagate(t *testing.T) {
	d := New(nil)
	d.Register(wire.MessageTypeGetStatus, func(raw []byte) error {
		return errors.New("boom")
	})

	assert.NotPanics(t, func() {
		d.Dispatch([]byte(`{"messageType":"GET_STATUS"}`))
	})
}

func Test_Register_isIdempotent(t *testing.T) {
	d := New(nil)
	calls := 0
	h := func(raw []byte) error { calls++; return nil }

	d.Register(wire.MessageTypePingRequest, h)
	d.Register(wire.MessageTypePingRequest, h)

	d.Dispatch([]byte(`{"messageType":"PING_REQUEST"}`))
	assert.Equal(t, 1, calls)
}

func Test_Register_refusesNilHandler(t *testing.T) {
	d := New(nil)

	assert.NotPanics(t, func() {
		d.Register(wire.MessageTypePingRequest, nil)
	})

	assert.NotPanics(t, func() {
		d.Dispatch([]byte(`{"messageType":"PING_REQUEST"}`))
	})
}

func Test_Register_refusesUnknownType(t *testing.T) {
	d := New(nil)
	called := false

	d.Register(wire.MessageTypeUnknown, func(raw []byte) error {
		called = true
		return nil
	})

	d.Dispatch([]byte(`{"messageType":"NOT_A_REAL_TYPE"}`))
	assert.False(t, called, "a handler registered against MessageTypeUnknown must never run")
}

func Test_Register_replacingExistingHandlerLastWriterWins(t *testing.T) {
	d := New(nil)
	first, second := 0, 0

	d.Register(wire.MessageTypePingRequest, func(raw []byte) error { first++; return nil })
	d.Register(wire.MessageTypePingRequest, func(raw []byte) error { second++; return nil })

	d.Dispatch([]byte(`{"messageType":"PING_REQUEST"}`))
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}
