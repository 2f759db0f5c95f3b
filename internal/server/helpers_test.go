package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bombhazard/internal/config"
	"bombhazard/pkg/protocol"
)

// fakeSession 记录房间发来的所有数据包
type fakeSession struct {
	mu      sync.Mutex
	id      int32
	packets []*protocol.Packet
	closed  bool
	sendErr error
}

func newFakeSession() *fakeSession {
	return &fakeSession{id: -1}
}

func (s *fakeSession) ID() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *fakeSession) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	pkt, err := protocol.UnmarshalPacket(data)
	if err != nil {
		return err
	}
	s.packets = append(s.packets, pkt)
	return nil
}

func (s *fakeSession) Close() {
	s.CloseWithoutNotify()
}

func (s *fakeSession) CloseWithoutNotify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSession) SetPlayerID(id int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSession) count(t protocol.MessageType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.packets {
		if p.Type == t {
			n++
		}
	}
	return n
}

// last 最近一个指定类型的数据包
func (s *fakeSession) last(t *testing.T, typ protocol.MessageType) *protocol.Packet {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.packets) - 1; i >= 0; i-- {
		if s.packets[i].Type == typ {
			return s.packets[i]
		}
	}
	require.Failf(t, "missing packet", "no %s packet received", typ)
	return nil
}

func testRoomConfig() config.Room {
	cfg := config.Default().Room
	cfg.FillPercent = 0
	cfg.Seed = 1
	cfg.Bots = 0
	return cfg
}

func newTestRoom(t *testing.T, cfg config.Room) *Room {
	t.Helper()
	r, err := NewRoom(context.Background(), DefaultRoomID, cfg, NewSessionIssuer("test-secret", time.Minute))
	require.NoError(t, err)
	t.Cleanup(r.Shutdown)
	return r
}

// join 直接在测试 goroutine 中执行加入流程
func join(t *testing.T, r *Room, name string) (*fakeSession, *protocol.JoinResponse) {
	t.Helper()
	s := newFakeSession()
	require.NoError(t, r.handleJoin(joinRequest{session: s, req: &JoinEvent{PlayerName: name}}))
	resp, err := protocol.ParseJoinResponse(s.last(t, protocol.MessageTypeJoinResponse))
	require.NoError(t, err)
	return s, resp
}
