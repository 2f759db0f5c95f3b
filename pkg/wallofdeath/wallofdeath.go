// Package wallofdeath 死亡之墙：对战后半段从地图左下角开始，沿顺时针方向螺旋向内逐格封死地图。
package wallofdeath

import (
	"time"

	"bombhazard/pkg/clock"
	"bombhazard/pkg/grid"
)

// StepCooldown 每放置一格墙后的冷却
const StepCooldown = 200 * time.Millisecond

// WarningWindow 休眠结束前这段时间内，第 1 列视为危险
const WarningWindow = 5 * time.Second

// State 状态
type State uint8

const (
	StateDormant State = iota
	StateActive
	StateDone
)

func (s State) String() string {
	switch s {
	case StateDormant:
		return "Dormant"
	case StateActive:
		return "Active"
	case StateDone:
		return "Done"
	}
	return "Unknown"
}

// OccupantKind 格子上实体的类型
type OccupantKind uint8

const (
	OccupantPlayer OccupantKind = iota
	OccupantBomb
	OccupantWall
	OccupantFire
	OccupantItem
)

// Occupant 被墙压到的实体
type Occupant struct {
	Kind     OccupantKind
	ID       int32
	OwnerID  int32 // 仅炸弹有效
	HasOwner bool
}

// World 死亡之墙对世界的全部访问
type World interface {
	// IsStoneWall 是否为不可破坏的墙（包括死亡之墙自己放下的墙）
	IsStoneWall(p grid.Position) bool
	OccupantsAt(p grid.Position) []Occupant
	Despawn(o Occupant)
	PlayerDied(id int32)
	RefundBomb(ownerID int32)
	PlaceWall(p grid.Position)
}

// WallOfDeath 死亡之墙状态机：Dormant -> Active -> Done
type WallOfDeath struct {
	state    State
	size     grid.MapSize
	dormant  clock.Timer
	pos      grid.Position
	dir      grid.Direction
	cooldown clock.Cooldown
}

// New 创建处于休眠状态的死亡之墙
func New(size grid.MapSize, dormant time.Duration) *WallOfDeath {
	return &WallOfDeath{
		state:   StateDormant,
		size:    size,
		dormant: clock.NewTimer(dormant),
	}
}

func (w *WallOfDeath) State() State {
	return w.state
}

// Position 当前位置和方向，仅 Active 状态有意义
func (w *WallOfDeath) Position() (grid.Position, grid.Direction) {
	return w.pos, w.dir
}

// Remaining 休眠剩余时间
func (w *WallOfDeath) Remaining() time.Duration {
	if w.state != StateDormant {
		return 0
	}
	return w.dormant.Remaining()
}

// Tick 推进状态机，每次调用最多放下一格墙
// 放下墙时返回该格子
func (w *WallOfDeath) Tick(dt time.Duration, world World) (grid.Position, bool) {
	switch w.state {
	case StateDormant:
		w.dormant.Tick(dt)
		if !w.dormant.Finished() {
			return grid.Position{}, false
		}
		w.state = StateActive
		w.pos = grid.Position{Y: w.size.Rows - 1, X: 1}
		w.dir = grid.DirUp
		w.cooldown = clock.NewCooldown(StepCooldown)
		// 激活当帧即可前进
		return w.step(world)
	case StateActive:
		w.cooldown.Tick(dt)
		return w.step(world)
	}
	return grid.Position{}, false
}

func (w *WallOfDeath) step(world World) (grid.Position, bool) {
	if !w.cooldown.Ready() {
		return grid.Position{}, false
	}

	next, dir, ok := w.next(world)
	if !ok {
		w.state = StateDone
		return grid.Position{}, false
	}

	w.cooldown.Trigger()
	w.pos, w.dir = next, dir
	w.crush(next, world)
	return next, true
}

// next 沿螺旋找到下一个不是石墙的格子，到达终点时返回 false
func (w *WallOfDeath) next(world World) (grid.Position, grid.Direction, bool) {
	pos, dir := w.pos, w.dir
	end := grid.Position{Y: w.size.Rows - 3, X: 3}

	// 正常地图上螺旋一定会走到终点，这里只防止异常尺寸下死循环
	limit := w.size.Rows * w.size.Columns * 4
	for i := 0; i < limit; i++ {
		if pos == end {
			return pos, dir, false
		}
		dir = w.turn(pos, dir)
		pos = pos.Offset(dir, 1)
		if !world.IsStoneWall(pos) {
			return pos, dir, true
		}
	}
	return pos, dir, false
}

// turn 在转角处改变方向
func (w *WallOfDeath) turn(p grid.Position, dir grid.Direction) grid.Direction {
	rows, cols := w.size.Rows, w.size.Columns
	switch {
	case p == grid.Position{Y: 1, X: 1}, p == grid.Position{Y: 2, X: 2}:
		return grid.DirRight
	case p.Y == 1 && p.X == cols-2:
		return grid.DirDown
	case p.Y == rows-2 && p.X == cols-2:
		return grid.DirLeft
	case p.Y == rows-2 && p.X == 2:
		return grid.DirUp
	case p.Y == 2 && p.X == cols-3:
		return grid.DirDown
	case p.Y == rows-3 && p.X == cols-3:
		return grid.DirLeft
	}
	return dir
}

// crush 清空格子上的所有实体并放下墙
func (w *WallOfDeath) crush(p grid.Position, world World) {
	for _, o := range world.OccupantsAt(p) {
		world.Despawn(o)
		switch o.Kind {
		case OccupantPlayer:
			world.PlayerDied(o.ID)
		case OccupantBomb:
			if o.HasOwner {
				world.RefundBomb(o.OwnerID)
			}
		}
	}
	world.PlaceWall(p)
}

// Threatens 预判死亡之墙即将经过的格子
//
// 休眠且剩余不足 WarningWindow 时第 1 列危险；
// 激活后当前所在的行或列危险，以及即将转入的那条边。
func (w *WallOfDeath) Threatens(p grid.Position) bool {
	if w == nil {
		return false
	}
	switch w.state {
	case StateDormant:
		return w.dormant.Remaining() < WarningWindow && p.X == 1
	case StateActive:
		rows, cols := w.size.Rows, w.size.Columns
		switch w.dir {
		case grid.DirLeft:
			return p.Y == w.pos.Y || (rows-1-w.pos.Y == 1 && p.X == 2)
		case grid.DirRight:
			return p.Y == w.pos.Y || p.X == cols-1-w.pos.Y
		case grid.DirUp:
			return p.X == w.pos.X || p.Y == w.pos.X
		case grid.DirDown:
			return p.X == w.pos.X || p.Y == rows-2-(cols-2-w.pos.X)
		}
	}
	return false
}
