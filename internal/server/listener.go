package server

import (
	"errors"
	"fmt"
	"net"

	kcp "github.com/xtaci/kcp-go/v5"

	"bombhazard/internal/config"
)

var ErrUnsupportedProtocol = errors.New("unsupported protocol")

// ServerListener tcp、kcp 与 ws 的统一监听接口
type ServerListener interface {
	Accept() (net.Conn, error)
	Close() error
	Addr() net.Addr
}

func newListener(network config.Network) (ServerListener, error) {
	addr := network.Addr()
	switch network.Protocol {
	case "tcp":
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("listen tcp %s: %w", addr, err)
		}
		return &tcpListener{listener: listener}, nil
	case "kcp":
		listener, err := kcp.ListenWithOptions(addr, nil, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("listen kcp %s: %w", addr, err)
		}
		return &kcpListener{listener: listener}, nil
	case "ws":
		return newWSListener(addr)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProtocol, network.Protocol)
	}
}

type tcpListener struct {
	listener net.Listener
}

func (l *tcpListener) Accept() (net.Conn, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		return nil, err
	}
	// 状态每帧广播，关闭 Nagle 降低延迟
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
	return conn, nil
}

func (l *tcpListener) Close() error {
	return l.listener.Close()
}

func (l *tcpListener) Addr() net.Addr {
	return l.listener.Addr()
}

type kcpListener struct {
	listener *kcp.Listener
}

func (l *kcpListener) Accept() (net.Conn, error) {
	session, err := l.listener.AcceptKCP()
	if err != nil {
		return nil, err
	}
	// 极速模式：nodelay, 10ms 内部时钟, 快速重传, 关闭拥塞控制
	session.SetNoDelay(1, 10, 2, 1)
	session.SetWindowSize(256, 256)
	// 消息边界由长度前缀处理
	session.SetStreamMode(true)
	return session, nil
}

func (l *kcpListener) Close() error {
	return l.listener.Close()
}

func (l *kcpListener) Addr() net.Addr {
	return l.listener.Addr()
}
