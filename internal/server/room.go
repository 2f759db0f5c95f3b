package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"bombhazard/internal/config"
	"bombhazard/pkg/ai"
	"bombhazard/pkg/core"
	"bombhazard/pkg/grid"
	"bombhazard/pkg/logger"
	"bombhazard/pkg/protocol"
)

// DefaultRoomID 单房间服务器的房间 ID
const DefaultRoomID = "default"

var (
	ErrRoomFull     = errors.New("房间已满")
	ErrRoomClosed   = errors.New("房间已关闭")
	ErrRoomEnding   = errors.New("房间结算中，暂时无法加入")
	ErrStaleSession = errors.New("会话不属于当前对局")
)

// RoomState 服务端房间状态
type RoomState int

const (
	StateWaiting RoomState = iota
	StateRunning
	StateEnding
)

func (s RoomState) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateRunning:
		return "running"
	case StateEnding:
		return "ending"
	}
	return "unknown"
}

// Room 一个对局房间，所有状态只在 Run 所在的 goroutine 中修改
type Room struct {
	ctx    context.Context
	cancel context.CancelFunc

	id     string
	cfg    config.Room
	botCfg ai.AIConfig
	issuer *SessionIssuer
	log    *logrus.Entry
	now    func() time.Time

	game    *core.Game
	seed    int64
	round   int
	state   RoomState
	resetAt time.Time
	frame   atomic.Int32

	sessions     map[int32]Session
	bots         map[int32]*ai.AIController
	inputQueue   map[int32]core.Input
	nextPlayerID int32

	joinCh      chan joinRequest
	reconnectCh chan reconnectRequest
	inputCh     chan *InputEvent
	leaveCh     chan int32
}

type joinRequest struct {
	session Session
	req     *JoinEvent
	respCh  chan error
}

type reconnectRequest struct {
	session Session
	token   string
	respCh  chan error
}

// NewRoom 创建房间并生成第一局
func NewRoom(parent context.Context, id string, cfg config.Room, issuer *SessionIssuer) (*Room, error) {
	difficulty, err := ai.ParseDifficulty(cfg.BotDifficulty)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		ctx:         ctx,
		cancel:      cancel,
		id:          id,
		cfg:         cfg,
		botCfg:      ai.ConfigFor(difficulty),
		issuer:      issuer,
		log:         logger.Log.WithField("room", id),
		now:         time.Now,
		joinCh:      make(chan joinRequest),
		reconnectCh: make(chan reconnectRequest),
		inputCh:     make(chan *InputEvent, 256),
		leaveCh:     make(chan int32, 256),
	}
	if err := r.newRound(); err != nil {
		cancel()
		return nil, err
	}
	return r, nil
}

// Run 房间主循环，按固定 TPS 推进对局
func (r *Room) Run() {
	ticker := time.NewTicker(r.cfg.TickDuration())
	defer ticker.Stop()

	r.log.WithFields(logrus.Fields{
		"tps":  r.cfg.TPS,
		"bots": r.cfg.Bots,
	}).Info("房间循环启动")

	for {
		select {
		case <-r.ctx.Done():
			r.closeAllSessions()
			r.log.Info("房间循环停止")
			return

		case req := <-r.joinCh:
			req.respCh <- r.handleJoin(req)

		case req := <-r.reconnectCh:
			req.respCh <- r.handleReconnect(req)

		case ev := <-r.inputCh:
			r.handleInput(ev)

		case playerID := <-r.leaveCh:
			r.handleLeave(playerID)

		case <-ticker.C:
			r.tick()
		}
	}
}

// Shutdown 停止房间
func (r *Room) Shutdown() {
	r.cancel()
}

// Frame 当前帧号，可在任意 goroutine 读取
func (r *Room) Frame() int32 {
	return r.frame.Load()
}

// Join 请求加入房间，阻塞直到房间处理完毕
func (r *Room) Join(s Session, req *JoinEvent) error {
	respCh := make(chan error, 1)

	select {
	case <-r.ctx.Done():
		return ErrRoomClosed
	case r.joinCh <- joinRequest{session: s, req: req, respCh: respCh}:
	}

	select {
	case <-r.ctx.Done():
		return ErrRoomClosed
	case err := <-respCh:
		return err
	}
}

// Reconnect 使用会话 Token 重新接管玩家
func (r *Room) Reconnect(s Session, token string) error {
	respCh := make(chan error, 1)

	select {
	case <-r.ctx.Done():
		return ErrRoomClosed
	case r.reconnectCh <- reconnectRequest{session: s, token: token, respCh: respCh}:
	}

	select {
	case <-r.ctx.Done():
		return ErrRoomClosed
	case err := <-respCh:
		return err
	}
}

// EnqueueInput 提交输入，下一帧生效
func (r *Room) EnqueueInput(ev *InputEvent) {
	select {
	case <-r.ctx.Done():
	case r.inputCh <- ev:
	}
}

// Leave 玩家断开
func (r *Room) Leave(playerID int32) {
	select {
	case <-r.ctx.Done():
	case r.leaveCh <- playerID:
	}
}

// newRound 生成新的一局，机器人先占座
func (r *Room) newRound() error {
	seed := r.cfg.Seed
	if seed == 0 {
		seed = r.now().UnixNano()
	}

	game, err := core.NewGame(core.Options{
		Size:          grid.MapSize{Rows: r.cfg.MapRows, Columns: r.cfg.MapColumns},
		FillPercent:   r.cfg.FillPercent,
		Seed:          seed,
		RoundDuration: r.cfg.RoundDuration,
		Seats:         r.cfg.MaxPlayers,
	})
	if err != nil {
		return fmt.Errorf("创建对局失败: %w", err)
	}

	r.game = game
	r.seed = seed
	r.round++
	r.state = StateWaiting
	r.resetAt = time.Time{}
	r.frame.Store(0)
	r.nextPlayerID = 1
	r.sessions = make(map[int32]Session)
	r.bots = make(map[int32]*ai.AIController)
	r.inputQueue = make(map[int32]core.Input)

	for i := 0; i < r.cfg.Bots; i++ {
		id := r.nextPlayerID
		if _, err := game.SpawnPlayer(id, true, r.botCfg.MoveCooldown); err != nil {
			return fmt.Errorf("机器人入座失败: %w", err)
		}
		r.nextPlayerID++
		r.bots[id] = ai.NewAIControllerWithConfig(id, r.botCfg, seed+int64(id))
	}

	r.log.WithFields(logrus.Fields{
		"round": r.round,
		"seed":  seed,
		"bots":  len(r.bots),
	}).Info("新的一局已生成")
	return nil
}

// sessionRoomID Token 中的房间标识，带局号，旧局的 Token 不能用于新局
func (r *Room) sessionRoomID() string {
	return fmt.Sprintf("%s#%d", r.id, r.round)
}

func (r *Room) tick() {
	if r.state == StateEnding {
		if r.now().After(r.resetAt) {
			r.resetRoom()
		}
		return
	}

	if r.state != StateRunning {
		return
	}

	r.applyInputs()
	r.driveBots()

	events := r.game.Update(r.cfg.TickDuration())
	r.frame.Store(r.game.FrameID)

	r.logEvents(events)
	r.broadcastEvents(events)
	r.broadcastState()

	if over, winnerID := r.checkGameOver(); over {
		r.handleGameOver(winnerID)
	}
}

func (r *Room) applyInputs() {
	if len(r.inputQueue) == 0 {
		return
	}

	inputs := r.inputQueue
	r.inputQueue = make(map[int32]core.Input, len(inputs))

	for playerID, input := range inputs {
		if core.ApplyInput(r.game, playerID, input) {
			r.log.WithField("player", playerID).Debug("放置炸弹")
		}
	}
}

// driveBots 按 ID 顺序让机器人决策，保证同一种子下结果一致
func (r *Room) driveBots() {
	ids := make([]int32, 0, len(r.bots))
	for id := range r.bots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		input := r.bots[id].Decide(r.game)
		core.ApplyInput(r.game, id, input)
	}
}

func (r *Room) handleJoin(req joinRequest) error {
	if r.state == StateEnding {
		return ErrRoomEnding
	}

	playerID := r.nextPlayerID
	player, err := r.game.SpawnPlayer(playerID, false, r.cfg.MoveCooldown)
	if err != nil {
		if errors.Is(err, core.ErrNoSpawn) {
			return fmt.Errorf("%w (%d/%d)", ErrRoomFull, len(r.game.Players), r.cfg.MaxPlayers)
		}
		return err
	}
	r.nextPlayerID++

	token, err := r.issuer.Issue(playerID, r.sessionRoomID())
	if err != nil {
		r.game.RemovePlayer(playerID)
		return fmt.Errorf("签发会话失败: %w", err)
	}

	resp := &protocol.JoinResponse{
		Success:      true,
		PlayerID:     playerID,
		SessionToken: token,
		Rows:         int32(r.cfg.MapRows),
		Columns:      int32(r.cfg.MapColumns),
		TPS:          int32(r.cfg.TPS),
		Seed:         r.seed,
		Character:    protocol.CoreCharacterTypeToProto(player.Character),
	}
	if err := req.session.Send(protocol.Encode(protocol.NewJoinResponsePacket(resp))); err != nil {
		r.game.RemovePlayer(playerID)
		return fmt.Errorf("发送加入响应失败: %w", err)
	}

	req.session.SetPlayerID(playerID)
	r.sessions[playerID] = req.session

	r.log.WithFields(logrus.Fields{
		"player":    playerID,
		"name":      req.req.PlayerName,
		"character": player.Character,
		"spawn":     player.Spawn,
	}).Info("玩家加入")

	if r.state == StateWaiting {
		r.state = StateRunning
		r.log.Info("对局开始")
	}
	return nil
}

func (r *Room) handleReconnect(req reconnectRequest) error {
	fail := func(err error) error {
		_ = req.session.Send(protocol.Encode(protocol.NewReconnectResponsePacket(false, err.Error(), 0, nil)))
		return err
	}

	playerID, roomID, err := r.issuer.Verify(req.token)
	if err != nil {
		return fail(err)
	}
	if roomID != r.sessionRoomID() || r.state == StateEnding {
		return fail(ErrStaleSession)
	}
	player := r.game.Player(playerID)
	if player == nil || player.Bot {
		return fail(ErrStaleSession)
	}
	if _, online := r.sessions[playerID]; online {
		return fail(fmt.Errorf("玩家 %d 仍在线", playerID))
	}

	state := protocol.CoreGameToProto(r.game)
	if err := req.session.Send(protocol.Encode(protocol.NewReconnectResponsePacket(true, "", playerID, state))); err != nil {
		return fmt.Errorf("发送重连响应失败: %w", err)
	}

	req.session.SetPlayerID(playerID)
	r.sessions[playerID] = req.session
	r.log.WithField("player", playerID).Info("玩家重连")
	return nil
}

func (r *Room) handleInput(ev *InputEvent) {
	if r.state != StateRunning || ev == nil || len(ev.Inputs) == 0 {
		return
	}
	if _, exists := r.sessions[ev.PlayerID]; !exists {
		return
	}

	merged := ev.Merge()
	if queued, ok := r.inputQueue[ev.PlayerID]; ok && queued.Bomb {
		merged.Bomb = true
	}
	r.inputQueue[ev.PlayerID] = merged
}

// handleLeave 等待中离开直接让出座位；对局中保留角色，允许重连
func (r *Room) handleLeave(playerID int32) {
	if _, exists := r.sessions[playerID]; !exists {
		return
	}

	delete(r.sessions, playerID)
	delete(r.inputQueue, playerID)

	if r.state == StateWaiting {
		r.game.RemovePlayer(playerID)
	}

	r.log.WithFields(logrus.Fields{
		"player": playerID,
		"online": len(r.sessions),
	}).Info("玩家离开")

	if len(r.sessions) == 0 && r.state == StateRunning {
		r.handleGameOver(core.NoWinner)
	}
}

// checkGameOver 对局结束条件，单人练习时玩家死亡即结束
func (r *Room) checkGameOver() (bool, int32) {
	if r.game.Over {
		return true, r.game.WinnerID
	}
	if len(r.game.Players) == 1 && len(r.game.AlivePlayers()) == 0 {
		return true, core.NoWinner
	}
	return false, core.NoWinner
}

func (r *Room) handleGameOver(winnerID int32) {
	if r.state == StateEnding {
		return
	}

	r.state = StateEnding
	r.resetAt = r.now().Add(r.cfg.ResetDelay)

	r.log.WithFields(logrus.Fields{
		"winner": winnerID,
		"frame":  r.game.FrameID,
	}).Info("游戏结束")

	r.broadcast(protocol.Encode(protocol.NewGameOverPacket(winnerID, r.game.FrameID)))
}

// resetRoom 断开所有连接并生成新的一局
func (r *Room) resetRoom() {
	r.closeAllSessions()
	if err := r.newRound(); err != nil {
		r.log.WithError(err).Error("重置房间失败")
		r.cancel()
	}
}

func (r *Room) closeAllSessions() {
	for _, s := range r.sessions {
		s.CloseWithoutNotify()
	}
	r.sessions = make(map[int32]Session)
}

func (r *Room) logEvents(events []core.Event) {
	for _, e := range events {
		entry := r.log.WithFields(logrus.Fields{
			"frame": e.Frame,
			"event": e.Kind,
			"pos":   e.Pos,
		})
		switch e.Kind {
		case core.EventPlayerDied:
			entry.WithFields(logrus.Fields{"player": e.PlayerID, "cause": e.Cause}).Info("玩家死亡")
		case core.EventWallOfDeathActivated:
			entry.Info("死亡之墙启动")
		case core.EventItemPicked:
			entry.WithFields(logrus.Fields{"player": e.PlayerID, "item": e.Item}).Debug("拾取道具")
		default:
			entry.Debug("对局事件")
		}
	}
}

func (r *Room) broadcastEvents(events []core.Event) {
	for _, e := range events {
		event := protocol.CoreEventToProto(e)
		r.broadcast(protocol.Encode(protocol.NewGameEventPacket(&event)))
	}
}

func (r *Room) broadcastState() {
	r.broadcast(protocol.Encode(protocol.NewGameStatePacket(protocol.CoreGameToProto(r.game))))
}

func (r *Room) broadcast(data []byte) {
	for playerID, s := range r.sessions {
		if err := s.Send(data); err != nil {
			r.log.WithError(err).WithField("player", playerID).Warn("发送失败")
		}
	}
}
