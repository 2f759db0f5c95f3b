package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"bombhazard/internal/config"
	"bombhazard/pkg/logger"
	"bombhazard/pkg/protocol"
)

var (
	ErrSendQueueFull    = errors.New("发送队列满")
	ErrConnectionClosed = errors.New("连接已关闭")
)

// connHandler 连接收到的消息交给它处理，由 GameServer 实现
type connHandler interface {
	handleJoinRequest(s Session, ev *JoinEvent) error
	handleReconnect(s Session, ev *ReconnectEvent) error
	handleClientInput(playerID int32, ev *InputEvent)
	handlePing(s Session, ev *PingEvent)
	removePlayer(playerID int32)
}

// Connection 表示一个客户端连接
type Connection struct {
	conn     net.Conn
	handler  connHandler
	timeouts config.Timeouts
	limiter  *rate.Limiter
	log      *logrus.Entry
	playerID int32

	// 发送队列
	sendChan chan []byte
	closeCh  chan struct{}
	closed   bool
	closeMu  sync.Mutex

	lastRecvTime atomic.Value
	rtt          atomic.Int64
	dropped      atomic.Int64
}

// NewConnection 创建新连接
func NewConnection(conn net.Conn, handler connHandler, timeouts config.Timeouts, flood config.Flood) *Connection {
	c := &Connection{
		conn:     conn,
		handler:  handler,
		timeouts: timeouts,
		limiter:  rate.NewLimiter(rate.Limit(flood.InputRate), flood.InputBurst),
		log:      logger.Log.WithField("remote", conn.RemoteAddr().String()),
		playerID: -1, // -1 表示未分配
		sendChan: make(chan []byte, timeouts.SendQueueSize),
		closeCh:  make(chan struct{}),
	}
	c.lastRecvTime.Store(time.Now())
	return c
}

// Handle 处理连接，直到上下文取消或连接关闭
func (c *Connection) Handle(ctx context.Context) {
	c.entry().Debug("连接处理开始")

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		c.startHeartbeat(ctx)
	}()
	go func() {
		defer wg.Done()
		c.sendLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		c.receiveLoop()
	}()

	select {
	case <-ctx.Done():
		c.CloseWithoutNotify()
	case <-c.closeCh:
	}

	wg.Wait()
}

// Close 关闭连接
func (c *Connection) Close() {
	c.closeWithNotify(true)
}

// CloseWithoutNotify 关闭连接但不触发移除玩家逻辑
func (c *Connection) CloseWithoutNotify() {
	c.closeWithNotify(false)
}

func (c *Connection) closeWithNotify(notify bool) {
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		return
	}
	c.closed = true
	close(c.closeCh)
	close(c.sendChan)
	c.closeMu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
	}

	// 从房间移除玩家
	if notify {
		if playerID := c.getPlayerID(); playerID >= 0 {
			c.handler.removePlayer(playerID)
		}
	}

	c.entry().WithField("dropped_inputs", c.dropped.Load()).Info("连接已关闭")
}

// Send 发送数据（异步），队列满时直接丢弃
func (c *Connection) Send(data []byte) error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.sendChan <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// sendLoop 发送循环
func (c *Connection) sendLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case data, ok := <-c.sendChan:
			if !ok {
				return
			}

			_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeouts.WriteTimeout))
			if err := protocol.WriteFrame(c.conn, data); err != nil {
				c.entry().WithError(err).Warn("发送数据失败")
				c.Close()
				return
			}
		}
	}
}

// receiveLoop 接收循环，读失败即关闭连接
func (c *Connection) receiveLoop() {
	for {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.timeouts.ReadTimeout))
		data, err := protocol.ReadFrame(c.conn)
		if err != nil {
			var netErr net.Error
			switch {
			case c.isClosed():
			case errors.As(err, &netErr) && netErr.Timeout():
				c.entry().Info("读取超时")
			case errors.Is(err, io.EOF):
				c.entry().Debug("客户端断开")
			default:
				c.entry().WithError(err).Warn("读取数据失败")
			}
			c.Close()
			return
		}

		c.onMessageReceived()
		if len(data) == 0 {
			continue
		}

		if err := c.handleMessage(data); err != nil {
			c.entry().WithError(err).Warn("处理消息失败")
		}
	}
}

// handleMessage 处理接收到的消息
func (c *Connection) handleMessage(data []byte) error {
	event, err := DecodePacket(data)
	if err != nil {
		return fmt.Errorf("反序列化失败: %w", err)
	}

	switch event.Kind {
	case EventJoin:
		if c.getPlayerID() >= 0 {
			return fmt.Errorf("玩家 %d 重复加入", c.getPlayerID())
		}
		if err := c.handler.handleJoinRequest(c, event.Join); err != nil {
			return fmt.Errorf("处理加入请求失败: %w", err)
		}

	case EventReconnect:
		if c.getPlayerID() >= 0 {
			return fmt.Errorf("玩家 %d 已在房间中", c.getPlayerID())
		}
		if err := c.handler.handleReconnect(c, event.Reconnect); err != nil {
			return fmt.Errorf("处理重连请求失败: %w", err)
		}

	case EventInput:
		playerID := c.getPlayerID()
		if playerID < 0 {
			return fmt.Errorf("未加入房间")
		}
		if !c.limiter.Allow() {
			c.dropped.Add(1)
			return nil
		}
		event.Input.PlayerID = playerID
		c.handler.handleClientInput(playerID, event.Input)

	case EventPing:
		c.handler.handlePing(c, event.Ping)

	case EventPong:
		c.handlePong(event.Pong)

	default:
		return fmt.Errorf("未知消息类型")
	}

	return nil
}

// String 返回连接的字符串表示
func (c *Connection) String() string {
	if c.getPlayerID() >= 0 {
		return fmt.Sprintf("Connection{%d, %s}", c.getPlayerID(), c.conn.RemoteAddr())
	}
	return fmt.Sprintf("Connection{%s}", c.conn.RemoteAddr())
}

func (c *Connection) isClosed() bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.closed
}

func (c *Connection) getPlayerID() int32 {
	return atomic.LoadInt32(&c.playerID)
}

func (c *Connection) ID() int32 {
	return c.getPlayerID()
}

func (c *Connection) SetPlayerID(playerID int32) {
	atomic.StoreInt32(&c.playerID, playerID)
}

func (c *Connection) entry() *logrus.Entry {
	return c.log.WithField("player", c.getPlayerID())
}

// RTT 最近一次心跳测得的往返时间
func (c *Connection) RTT() time.Duration {
	return time.Duration(c.rtt.Load()) * time.Millisecond
}

// DroppedInputs 被限流丢弃的输入数
func (c *Connection) DroppedInputs() int64 {
	return c.dropped.Load()
}

func (c *Connection) startHeartbeat(ctx context.Context) {
	ticker := time.NewTicker(c.timeouts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closeCh:
			return
		case <-ticker.C:
			lastRecv, _ := c.lastRecvTime.Load().(time.Time)
			if time.Since(lastRecv) > c.timeouts.HeartbeatTimeout {
				c.entry().Info("心跳超时")
				c.Close()
				return
			}
			c.sendPing()
		}
	}
}

func (c *Connection) sendPing() {
	_ = c.Send(protocol.Encode(protocol.NewPingPacket(time.Now().UnixMilli())))
}

func (c *Connection) handlePong(pong *PongEvent) {
	if pong == nil || pong.ClientTime <= 0 {
		return
	}
	c.rtt.Store(time.Now().UnixMilli() - pong.ClientTime)
}

func (c *Connection) onMessageReceived() {
	c.lastRecvTime.Store(time.Now())
}
