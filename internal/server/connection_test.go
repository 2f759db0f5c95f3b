package server

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bombhazard/internal/config"
	"bombhazard/pkg/protocol"
)

type fakeHandler struct {
	mu         sync.Mutex
	joins      int
	reconnects int
	inputs     []*InputEvent
	removed    []int32
}

func (h *fakeHandler) handleJoinRequest(s Session, ev *JoinEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joins++
	s.SetPlayerID(5)
	return nil
}

func (h *fakeHandler) handleReconnect(s Session, ev *ReconnectEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reconnects++
	s.SetPlayerID(6)
	return nil
}

func (h *fakeHandler) handleClientInput(playerID int32, ev *InputEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inputs = append(h.inputs, ev)
}

func (h *fakeHandler) handlePing(s Session, ev *PingEvent) {
	_ = s.Send(protocol.Encode(protocol.NewPongPacket(ev.ClientTime, 1, 0)))
}

func (h *fakeHandler) removePlayer(playerID int32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removed = append(h.removed, playerID)
}

func (h *fakeHandler) snapshot() (joins int, inputs int, removed []int32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.joins, len(h.inputs), append([]int32(nil), h.removed...)
}

type pipeConn struct {
	conn    *Connection
	client  net.Conn
	handler *fakeHandler
	cancel  context.CancelFunc
	done    chan struct{}
}

func newPipeConn(t *testing.T, timeouts config.Timeouts, flood config.Flood) *pipeConn {
	t.Helper()
	server, client := net.Pipe()
	h := &fakeHandler{}
	ctx, cancel := context.WithCancel(context.Background())

	pc := &pipeConn{
		conn:    NewConnection(server, h, timeouts, flood),
		client:  client,
		handler: h,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go func() {
		pc.conn.Handle(ctx)
		close(pc.done)
	}()
	t.Cleanup(func() {
		cancel()
		client.Close()
	})
	return pc
}

func (pc *pipeConn) write(t *testing.T, packet *protocol.Packet) {
	t.Helper()
	require.NoError(t, pc.client.SetWriteDeadline(time.Now().Add(time.Second)))
	require.NoError(t, protocol.WriteFrame(pc.client, protocol.Encode(packet)))
}

func (pc *pipeConn) read(t *testing.T) *protocol.Packet {
	t.Helper()
	require.NoError(t, pc.client.SetReadDeadline(time.Now().Add(time.Second)))
	data, err := protocol.ReadFrame(pc.client)
	require.NoError(t, err)
	pkt, err := protocol.UnmarshalPacket(data)
	require.NoError(t, err)
	return pkt
}

func (pc *pipeConn) waitDone(t *testing.T) {
	t.Helper()
	select {
	case <-pc.done:
	case <-time.After(2 * time.Second):
		t.Fatal("连接没有关闭")
	}
}

func TestConnectionJoinAndInputs(t *testing.T) {
	pc := newPipeConn(t, config.Default().Timeouts, config.Flood{InputRate: 0.001, InputBurst: 2})

	// 加入前的输入被拒绝
	pc.write(t, protocol.NewClientInputPacket(1, 1, true, false, false, false, false))
	pc.write(t, protocol.NewJoinRequestPacket("alice"))
	for i := 0; i < 5; i++ {
		pc.write(t, protocol.NewClientInputPacket(int32(i+2), int32(i), false, false, false, true, false))
	}
	// 重复加入被拒绝
	pc.write(t, protocol.NewJoinRequestPacket("alice"))

	require.Eventually(t, func() bool {
		return pc.conn.DroppedInputs() == 3
	}, time.Second, 5*time.Millisecond)

	joins, inputs, _ := pc.handler.snapshot()
	assert.Equal(t, 1, joins)
	assert.Equal(t, 2, inputs)
	assert.Equal(t, int32(5), pc.conn.ID())

	pc.handler.mu.Lock()
	assert.Equal(t, int32(5), pc.handler.inputs[0].PlayerID)
	pc.handler.mu.Unlock()
}

func TestConnectionPingPong(t *testing.T) {
	pc := newPipeConn(t, config.Default().Timeouts, config.Default().Flood)

	pc.write(t, protocol.NewPingPacket(1234))
	pong, err := protocol.ParsePong(pc.read(t))
	require.NoError(t, err)
	assert.Equal(t, int64(1234), pong.ClientTime)

	// 客户端回复的 Pong 用于测量 RTT
	pc.write(t, protocol.NewPongPacket(time.Now().Add(-20*time.Millisecond).UnixMilli(), 0, 0))
	require.Eventually(t, func() bool {
		return pc.conn.RTT() >= 20*time.Millisecond
	}, time.Second, 5*time.Millisecond)
}

func TestConnectionReconnect(t *testing.T) {
	pc := newPipeConn(t, config.Default().Timeouts, config.Default().Flood)

	pc.write(t, protocol.NewReconnectRequestPacket("token"))
	require.Eventually(t, func() bool {
		return pc.conn.ID() == 6
	}, time.Second, 5*time.Millisecond)
}

func TestConnectionCloseNotifiesRoom(t *testing.T) {
	pc := newPipeConn(t, config.Default().Timeouts, config.Default().Flood)
	pc.write(t, protocol.NewJoinRequestPacket("alice"))
	require.Eventually(t, func() bool { return pc.conn.ID() == 5 }, time.Second, 5*time.Millisecond)

	require.NoError(t, pc.client.Close())
	pc.waitDone(t)

	_, _, removed := pc.handler.snapshot()
	assert.Equal(t, []int32{5}, removed)
	assert.ErrorIs(t, pc.conn.Send([]byte{1}), ErrConnectionClosed)
}

func TestConnectionContextCancelDoesNotNotify(t *testing.T) {
	pc := newPipeConn(t, config.Default().Timeouts, config.Default().Flood)
	pc.write(t, protocol.NewJoinRequestPacket("alice"))
	require.Eventually(t, func() bool { return pc.conn.ID() == 5 }, time.Second, 5*time.Millisecond)

	pc.cancel()
	pc.waitDone(t)

	_, _, removed := pc.handler.snapshot()
	assert.Empty(t, removed)
}

func TestConnectionHeartbeatTimeout(t *testing.T) {
	timeouts := config.Default().Timeouts
	timeouts.HeartbeatInterval = 20 * time.Millisecond
	timeouts.HeartbeatTimeout = 60 * time.Millisecond
	timeouts.WriteTimeout = 20 * time.Millisecond
	pc := newPipeConn(t, timeouts, config.Default().Flood)

	pc.waitDone(t)
}

func TestConnectionSendQueueFull(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	timeouts := config.Default().Timeouts
	timeouts.SendQueueSize = 1
	c := NewConnection(server, &fakeHandler{}, timeouts, config.Default().Flood)

	require.NoError(t, c.Send([]byte{1}))
	assert.ErrorIs(t, c.Send([]byte{2}), ErrSendQueueFull)

	c.CloseWithoutNotify()
	assert.ErrorIs(t, c.Send([]byte{3}), ErrConnectionClosed)
}
