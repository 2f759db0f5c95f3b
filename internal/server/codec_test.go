package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bombhazard/pkg/core"
	"bombhazard/pkg/protocol"
)

func TestDecodePacket(t *testing.T) {
	ev, err := DecodePacket(protocol.Encode(protocol.NewJoinRequestPacket("alice")))
	require.NoError(t, err)
	assert.Equal(t, EventJoin, ev.Kind)
	assert.Equal(t, "alice", ev.Join.PlayerName)

	ev, err = DecodePacket(protocol.Encode(protocol.NewReconnectRequestPacket("tok")))
	require.NoError(t, err)
	assert.Equal(t, EventReconnect, ev.Kind)
	assert.Equal(t, "tok", ev.Reconnect.SessionToken)

	ev, err = DecodePacket(protocol.Encode(protocol.NewPingPacket(99)))
	require.NoError(t, err)
	assert.Equal(t, EventPing, ev.Kind)
	assert.Equal(t, int64(99), ev.Ping.ClientTime)

	// 服务器方向的消息不处理
	ev, err = DecodePacket(protocol.Encode(protocol.NewGameOverPacket(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, EventUnknown, ev.Kind)

	_, err = DecodePacket([]byte{0xff})
	assert.Error(t, err)
}

func TestDecodeInputMerges(t *testing.T) {
	packet := protocol.NewClientInputPacketWithInputs(4, []protocol.InputData{
		{FrameID: 1, Bomb: true},
		{FrameID: 2, Left: true},
	})

	ev, err := DecodePacket(protocol.Encode(packet))
	require.NoError(t, err)
	require.Equal(t, EventInput, ev.Kind)
	assert.Equal(t, int32(4), ev.Input.Seq)
	require.Len(t, ev.Input.Inputs, 2)

	assert.Equal(t, core.Input{Left: true, Bomb: true}, ev.Input.Merge())
}
