package core

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"bombhazard/pkg/grid"
	"bombhazard/pkg/wallofdeath"
)

// NoWinner 平局
const NoWinner int32 = -1

var (
	ErrInvalidOptions  = errors.New("invalid game options")
	ErrNoSpawn         = errors.New("no free spawn position")
	ErrDuplicatePlayer = errors.New("player already in game")
)

// Options 对局参数
type Options struct {
	Size          grid.MapSize
	FillPercent   int
	Seed          int64
	RoundDuration time.Duration
	Seats         int // 预留出生点的座位数
}

// DefaultOptions 四人对战的默认参数
func DefaultOptions() Options {
	return Options{
		Size:          grid.MapSize{Rows: DefaultMapRows, Columns: DefaultMapColumns},
		FillPercent:   DefaultFillPercent,
		Seed:          time.Now().UnixNano(),
		RoundDuration: DefaultRoundDuration,
		Seats:         4,
	}
}

// Validate 检查参数
func (o Options) Validate() error {
	switch {
	case o.Size.Rows < MinMapSize || o.Size.Columns < MinMapSize:
		return fmt.Errorf("%w: map %dx%d smaller than %d", ErrInvalidOptions, o.Size.Rows, o.Size.Columns, MinMapSize)
	case o.Size.Rows%2 == 0 || o.Size.Columns%2 == 0:
		return fmt.Errorf("%w: map dimensions must be odd", ErrInvalidOptions)
	case o.FillPercent < 0 || o.FillPercent > 100:
		return fmt.Errorf("%w: fill percent %d", ErrInvalidOptions, o.FillPercent)
	case o.Seats < 1 || o.Seats > MaxPlayers:
		return fmt.Errorf("%w: seats %d", ErrInvalidOptions, o.Seats)
	case o.RoundDuration <= 0:
		return fmt.Errorf("%w: round duration %v", ErrInvalidOptions, o.RoundDuration)
	}
	return nil
}

// Game 游戏状态（纯逻辑，不包含渲染）
type Game struct {
	Map         *GameMap
	Players     []*Player
	Bombs       []*Bomb
	Fires       []*Fire
	Items       []*Item
	WallOfDeath *wallofdeath.WallOfDeath

	FrameID       int32
	Elapsed       time.Duration
	RoundDuration time.Duration
	Over          bool
	WinnerID      int32

	spawns []grid.Position
	rng    *rand.Rand
	lastID int32
	events []Event
}

// NewGame 创建新游戏
func NewGame(opts Options) (*Game, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	spawns := SpawnPositions(opts.Size)[:opts.Seats]
	m, err := NewGameMap(opts.Size, opts.FillPercent, spawns, rng)
	if err != nil {
		return nil, fmt.Errorf("generate map: %w", err)
	}

	return &Game{
		Map:           m,
		Players:       make([]*Player, 0, opts.Seats),
		Bombs:         make([]*Bomb, 0),
		Fires:         make([]*Fire, 0),
		Items:         make([]*Item, 0),
		WallOfDeath:   wallofdeath.New(opts.Size, opts.RoundDuration/2),
		RoundDuration: opts.RoundDuration,
		WinnerID:      NoWinner,
		spawns:        spawns,
		rng:           rng,
	}, nil
}

// AddPlayer 添加玩家
func (g *Game) AddPlayer(player *Player) error {
	if g.Player(player.ID) != nil {
		return fmt.Errorf("%w: %d", ErrDuplicatePlayer, player.ID)
	}
	g.Players = append(g.Players, player)
	return nil
}

// SpawnPlayer 在第一个空闲出生点创建玩家
func (g *Game) SpawnPlayer(id int32, bot bool, moveCooldown time.Duration) (*Player, error) {
	seat := g.freeSeat()
	if seat < 0 {
		return nil, ErrNoSpawn
	}
	player := NewPlayer(id, g.spawns[seat], CharacterForSeat(seat), moveCooldown)
	player.Bot = bot
	if err := g.AddPlayer(player); err != nil {
		return nil, err
	}
	return player, nil
}

// RemovePlayer 移除玩家，场上属于他的炸弹不再退还
func (g *Game) RemovePlayer(id int32) bool {
	for i, player := range g.Players {
		if player.ID != id {
			continue
		}
		g.Players = append(g.Players[:i], g.Players[i+1:]...)
		for _, bomb := range g.Bombs {
			if bomb.HasOwner && bomb.OwnerID == id {
				bomb.HasOwner = false
			}
		}
		return true
	}
	return false
}

func (g *Game) freeSeat() int {
	for seat, spawn := range g.spawns {
		taken := false
		for _, player := range g.Players {
			if player.Spawn == spawn {
				taken = true
				break
			}
		}
		if !taken {
			return seat
		}
	}
	return -1
}

// AddBomb 添加炸弹
func (g *Game) AddBomb(bomb *Bomb) {
	g.Bombs = append(g.Bombs, bomb)
	g.emit(Event{Kind: EventBombPlaced, Pos: bomb.Pos, PlayerID: bomb.OwnerID})
}

// Player 根据 ID 查找玩家
func (g *Game) Player(id int32) *Player {
	for _, player := range g.Players {
		if player.ID == id {
			return player
		}
	}
	return nil
}

// AlivePlayers 存活的玩家
func (g *Game) AlivePlayers() []*Player {
	alive := make([]*Player, 0, len(g.Players))
	for _, player := range g.Players {
		if !player.Dead {
			alive = append(alive, player)
		}
	}
	return alive
}

// Remaining 本局剩余时间
func (g *Game) Remaining() time.Duration {
	if g.Elapsed >= g.RoundDuration {
		return 0
	}
	return g.RoundDuration - g.Elapsed
}

// Update 推进一帧，返回本帧发生的事件
func (g *Game) Update(dt time.Duration) []Event {
	if g.Over {
		return nil
	}
	g.FrameID++
	g.Elapsed += dt

	for _, player := range g.Players {
		player.MoveCooldown.Tick(dt)
	}

	g.updateMovingBombs(dt)
	for _, bomb := range g.Bombs {
		bomb.Fuse.Tick(dt)
	}
	g.updateFires(dt)
	for _, p := range g.Map.tickCrumbling(dt) {
		g.emit(Event{Kind: EventBrickDestroyed, Pos: p})
		if g.rng.Float64() < ItemSpawnChance {
			item := &Item{ID: g.nextEntityID(), Pos: p, Type: rollItem(g.rng.Intn(100))}
			g.Items = append(g.Items, item)
			g.emit(Event{Kind: EventItemSpawned, Pos: p, Item: item.Type})
		}
	}

	g.explodeBombs()
	g.burnFires()
	g.updateWallOfDeath(dt)
	g.checkRoundOver()

	events := g.events
	g.events = nil
	return events
}

func (g *Game) updateFires(dt time.Duration) {
	kept := g.Fires[:0]
	for _, f := range g.Fires {
		f.Timer.Tick(dt)
		if !f.Timer.Finished() {
			kept = append(kept, f)
		}
	}
	g.Fires = kept
}

// updateMovingBombs 被推动的炸弹沿直线滑行，直到前方有实体、道具或玩家
func (g *Game) updateMovingBombs(dt time.Duration) {
	for _, bomb := range g.Bombs {
		if !bomb.Moving {
			continue
		}
		for n := bomb.slide.Tick(dt); n > 0; n-- {
			next := bomb.Pos.Offset(bomb.MovingTo, 1)
			if g.stopsSlide(next) {
				bomb.Moving = false
				break
			}
			bomb.Pos = next
		}
	}
}

func (g *Game) stopsSlide(p grid.Position) bool {
	if g.Map.IsWall(p) || g.bombAt(p) != nil {
		return true
	}
	for _, item := range g.Items {
		if item.Pos == p {
			return true
		}
	}
	for _, player := range g.Players {
		if !player.Dead && player.Pos == p {
			return true
		}
	}
	return false
}

func (g *Game) updateWallOfDeath(dt time.Duration) {
	before := g.WallOfDeath.State()
	p, placed := g.WallOfDeath.Tick(dt, world{g})
	if before == wallofdeath.StateDormant && g.WallOfDeath.State() != wallofdeath.StateDormant {
		g.emit(Event{Kind: EventWallOfDeathActivated})
	}
	if placed {
		g.emit(Event{Kind: EventWallPlaced, Pos: p})
	}
}

// checkRoundOver 只剩一名或没有玩家存活，或时间耗尽时结束对局
func (g *Game) checkRoundOver() {
	alive := g.AlivePlayers()
	switch {
	case len(g.Players) > 1 && len(alive) <= 1:
		g.Over = true
		if len(alive) == 1 {
			g.WinnerID = alive[0].ID
		}
	case g.Elapsed >= g.RoundDuration:
		g.Over = true
	}
	if g.Over {
		g.emit(Event{Kind: EventRoundOver, PlayerID: g.WinnerID})
	}
}

func (g *Game) bombAt(p grid.Position) *Bomb {
	for _, bomb := range g.Bombs {
		if bomb.Pos == p {
			return bomb
		}
	}
	return nil
}

func (g *Game) pickUpItem(player *Player) {
	kept := g.Items[:0]
	for _, item := range g.Items {
		if item.Pos == player.Pos {
			player.applyItem(item.Type)
			g.emit(Event{Kind: EventItemPicked, Pos: item.Pos, PlayerID: player.ID, Item: item.Type})
			continue
		}
		kept = append(kept, item)
	}
	g.Items = kept
}

func (g *Game) refundBomb(ownerID int32) {
	if owner := g.Player(ownerID); owner != nil {
		owner.BombsAvailable++
	}
}

func (g *Game) killPlayer(player *Player, cause DeathCause) {
	if player.Dead {
		return
	}
	player.Dead = true
	g.emit(Event{Kind: EventPlayerDied, Pos: player.Pos, PlayerID: player.ID, Cause: cause})
}

func (g *Game) nextEntityID() int32 {
	g.lastID++
	return g.lastID
}

func (g *Game) emit(e Event) {
	e.Frame = g.FrameID
	g.events = append(g.events, e)
}
