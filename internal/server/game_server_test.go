package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bombhazard/internal/config"
	"bombhazard/pkg/protocol"
)

// readUntil 读取数据包直到遇到指定类型
func readUntil(t *testing.T, conn net.Conn, typ protocol.MessageType) *protocol.Packet {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		data, err := protocol.ReadFrame(conn)
		require.NoError(t, err)
		pkt, err := protocol.UnmarshalPacket(data)
		require.NoError(t, err)
		if pkt.Type == typ {
			return pkt
		}
	}
}

func TestNewGameServerValidatesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Room.MapRows = 10
	_, err := NewGameServer(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestGameServerListenFailure(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	cfg := config.Default()
	cfg.Network.BindAddress = "127.0.0.1"
	cfg.Network.Port = taken.Addr().(*net.TCPAddr).Port

	srv, err := NewGameServer(cfg)
	require.NoError(t, err)
	require.Error(t, srv.Run(context.Background()))

	select {
	case <-srv.Ready():
	default:
		t.Fatal("启动失败后 Ready 应当关闭")
	}
	assert.Nil(t, srv.Addr())
}

func TestGameServerOverTCP(t *testing.T) {
	cfg := config.Default()
	cfg.Network.BindAddress = "127.0.0.1"
	cfg.Network.Port = 0
	cfg.Room.FillPercent = 0
	cfg.Room.Seed = 7
	cfg.Room.Bots = 1
	cfg.Security.JWTSecret = "test-secret"

	srv, err := NewGameServer(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	select {
	case <-srv.Ready():
	case err := <-errCh:
		t.Fatalf("服务器启动失败: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("服务器没有就绪")
	}

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, protocol.WriteFrame(conn, protocol.Encode(protocol.NewJoinRequestPacket("tester"))))
	resp, err := protocol.ParseJoinResponse(readUntil(t, conn, protocol.MessageTypeJoinResponse))
	require.NoError(t, err)
	require.True(t, resp.Success, resp.ErrorMessage)
	assert.Equal(t, int32(2), resp.PlayerID)
	assert.Equal(t, int64(7), resp.Seed)

	state, err := protocol.ParseGameState(readUntil(t, conn, protocol.MessageTypeGameState))
	require.NoError(t, err)
	assert.Len(t, state.Players, 2)

	require.NoError(t, protocol.WriteFrame(conn, protocol.Encode(protocol.NewPingPacket(42))))
	pong, err := protocol.ParsePong(readUntil(t, conn, protocol.MessageTypePong))
	require.NoError(t, err)
	assert.Equal(t, int64(42), pong.ClientTime)
	assert.Positive(t, pong.ServerFrame)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("服务器没有退出")
	}
}

func TestGameServerRejectsJoinWhenFull(t *testing.T) {
	cfg := config.Default()
	cfg.Network.BindAddress = "127.0.0.1"
	cfg.Network.Port = 0
	cfg.Room.FillPercent = 0
	cfg.Room.MaxPlayers = 1

	srv, err := NewGameServer(cfg)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Run(ctx) }()

	first, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer first.Close()
	require.NoError(t, protocol.WriteFrame(first, protocol.Encode(protocol.NewJoinRequestPacket("a"))))
	resp, err := protocol.ParseJoinResponse(readUntil(t, first, protocol.MessageTypeJoinResponse))
	require.NoError(t, err)
	require.True(t, resp.Success)

	second, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, protocol.WriteFrame(second, protocol.Encode(protocol.NewJoinRequestPacket("b"))))
	resp, err = protocol.ParseJoinResponse(readUntil(t, second, protocol.MessageTypeJoinResponse))
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.ErrorMessage, "房间已满")
}
