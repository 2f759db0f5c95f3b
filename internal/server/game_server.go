package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"bombhazard/internal/config"
	"bombhazard/pkg/logger"
	"bombhazard/pkg/protocol"
)

// acceptBackoff Accept 出现临时错误后的等待时间
const acceptBackoff = 50 * time.Millisecond

// GameServer 游戏服务器：一个监听器和一个房间
type GameServer struct {
	cfg    config.Server
	issuer *SessionIssuer
	log    *logrus.Entry

	room     *Room
	listener ServerListener
	ready    chan struct{}
}

// NewGameServer 创建新的游戏服务器
func NewGameServer(cfg config.Server) (*GameServer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &GameServer{
		cfg:    cfg,
		issuer: NewSessionIssuer(cfg.Security.JWTSecret, cfg.Security.SessionTTL),
		log:    logger.Log.WithField("component", "server"),
		ready:  make(chan struct{}),
	}, nil
}

// Ready 监听器就绪或启动失败后关闭
func (s *GameServer) Ready() <-chan struct{} {
	return s.ready
}

// Addr 实际监听地址，阻塞到 Ready；启动失败时返回 nil
func (s *GameServer) Addr() net.Addr {
	<-s.ready
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run 启动服务器，阻塞直到 ctx 取消或出现致命错误
func (s *GameServer) Run(ctx context.Context) error {
	listener, err := newListener(s.cfg.Network)
	if err != nil {
		close(s.ready)
		return fmt.Errorf("监听失败: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	room, err := NewRoom(gctx, DefaultRoomID, s.cfg.Room, s.issuer)
	if err != nil {
		_ = listener.Close()
		close(s.ready)
		return err
	}
	s.listener = listener
	s.room = room
	close(s.ready)

	s.log.WithFields(logrus.Fields{
		"addr":     listener.Addr().String(),
		"protocol": s.cfg.Network.Protocol,
	}).Info("服务器监听中")

	g.Go(func() error {
		room.Run()
		if gctx.Err() == nil {
			return ErrRoomClosed
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		room.Shutdown()
		return listener.Close()
	})
	g.Go(func() error {
		return s.acceptLoop(gctx, g)
	})

	err = g.Wait()
	s.log.Info("服务器已关闭")
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// acceptLoop 接受客户端连接，每个连接在 errgroup 中单独处理
func (s *GameServer) acceptLoop(ctx context.Context, g *errgroup.Group) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.WithError(err).Warn("接受连接失败")
			time.Sleep(acceptBackoff)
			continue
		}

		s.log.WithField("remote", conn.RemoteAddr().String()).Info("新连接")

		connection := NewConnection(conn, s, s.cfg.Timeouts, s.cfg.Flood)
		g.Go(func() error {
			connection.Handle(ctx)
			return nil
		})
	}
}

// handleJoinRequest 处理加入请求，失败时回复原因
func (s *GameServer) handleJoinRequest(session Session, req *JoinEvent) error {
	if err := s.room.Join(session, req); err != nil {
		_ = session.Send(protocol.Encode(protocol.NewJoinFailedPacket(err.Error())))
		return err
	}
	return nil
}

// handleReconnect 处理重连请求
func (s *GameServer) handleReconnect(session Session, req *ReconnectEvent) error {
	return s.room.Reconnect(session, req.SessionToken)
}

// handleClientInput 处理客户端输入
func (s *GameServer) handleClientInput(playerID int32, input *InputEvent) {
	input.PlayerID = playerID
	s.room.EnqueueInput(input)
}

// handlePing 回复心跳，附带服务器帧号
func (s *GameServer) handlePing(session Session, ping *PingEvent) {
	pong := protocol.NewPongPacket(ping.ClientTime, time.Now().UnixMilli(), s.room.Frame())
	_ = session.Send(protocol.Encode(pong))
}

// removePlayer 移除玩家
func (s *GameServer) removePlayer(playerID int32) {
	s.room.Leave(playerID)
}
