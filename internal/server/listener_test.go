package server

import (
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bombhazard/internal/config"
	"bombhazard/pkg/protocol"
)

func localNetwork(proto string) config.Network {
	return config.Network{BindAddress: "127.0.0.1", Port: 0, Protocol: proto}
}

func acceptOne(t *testing.T, l ServerListener) net.Conn {
	t.Helper()
	ch := make(chan net.Conn, 1)
	go func() {
		conn, err := l.Accept()
		if err == nil {
			ch <- conn
		}
	}()
	select {
	case conn := <-ch:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("没有接受到连接")
		return nil
	}
}

func TestTCPListener(t *testing.T) {
	l, err := newListener(localNetwork("tcp"))
	require.NoError(t, err)
	defer l.Close()

	client, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	conn := acceptOne(t, l)
	defer conn.Close()

	require.NoError(t, protocol.WriteFrame(client, []byte("hello")))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	data, err := protocol.ReadFrame(conn)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestWebSocketListener(t *testing.T) {
	l, err := newListener(localNetwork("ws"))
	require.NoError(t, err)

	client, _, err := websocket.DefaultDialer.Dial("ws://"+l.Addr().String()+WebSocketPath, nil)
	require.NoError(t, err)
	defer client.Close()

	conn := acceptOne(t, l)
	defer conn.Close()

	// 一条消息内的两个帧，和被拆成两条消息的一个帧
	first := append(frameOf("ab"), frameOf("cde")...)
	require.NoError(t, client.WriteMessage(websocket.BinaryMessage, first))
	split := frameOf("fghij")
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("ignored")))
	require.NoError(t, client.WriteMessage(websocket.BinaryMessage, split[:3]))
	require.NoError(t, client.WriteMessage(websocket.BinaryMessage, split[3:]))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	for _, want := range []string{"ab", "cde", "fghij"} {
		data, err := protocol.ReadFrame(conn)
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}

	require.NoError(t, protocol.WriteFrame(conn, []byte("pong")))
	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	typ, msg, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, typ)
	assert.Equal(t, frameOf("pong"), msg)

	require.NoError(t, l.Close())
	_, err = l.Accept()
	assert.ErrorIs(t, err, net.ErrClosed)
}

func TestUnsupportedProtocol(t *testing.T) {
	_, err := newListener(localNetwork("quic"))
	assert.ErrorIs(t, err, ErrUnsupportedProtocol)
}

func frameOf(s string) []byte {
	return append([]byte{0, 0, 0, byte(len(s))}, s...)
}
