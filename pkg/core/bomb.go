package core

import (
	"bombhazard/pkg/clock"
	"bombhazard/pkg/grid"
)

// Bomb 炸弹（纯逻辑结构，不包含渲染）
type Bomb struct {
	ID       int32
	Pos      grid.Position
	OwnerID  int32
	HasOwner bool
	Range    int
	Fuse     clock.Timer

	// 被推动时的滑行方向
	Moving   bool
	MovingTo grid.Direction
	slide    clock.Steps
}

// NewBomb 创建新炸弹
func NewBomb(id int32, pos grid.Position, ownerID int32, bombRange int) *Bomb {
	return &Bomb{
		ID:       id,
		Pos:      pos,
		OwnerID:  ownerID,
		HasOwner: true,
		Range:    bombRange,
		Fuse:     clock.NewTimer(BombFuse),
	}
}

// IsExploded 引线是否已燃尽
func (b *Bomb) IsExploded() bool {
	return b.Fuse.Finished()
}

// Ignite 被火焰波及时缩短引线
func (b *Bomb) Ignite() {
	if b.Fuse.Remaining() > ShortenedFuse {
		b.Fuse = clock.NewTimer(ShortenedFuse)
	}
}

// Push 开始朝 dir 滑行
func (b *Bomb) Push(dir grid.Direction) {
	b.Moving = true
	b.MovingTo = dir
	b.slide = clock.NewSteps(PushedBombStep)
}

// Fire 燃烧中的格子
type Fire struct {
	ID    int32
	Pos   grid.Position
	Timer clock.Timer
}

// NewFire 创建火焰
func NewFire(id int32, pos grid.Position) *Fire {
	return &Fire{ID: id, Pos: pos, Timer: clock.NewTimer(FireDuration)}
}

// ItemType 道具类型
type ItemType uint8

const (
	ItemBombsUp  ItemType = iota // 炸弹数 +1
	ItemRangeUp                  // 范围 +1
	ItemBombPush                 // 可以推炸弹
	ItemWallHack                 // 可以穿过砖块
)

func (t ItemType) String() string {
	switch t {
	case ItemBombsUp:
		return "BombsUp"
	case ItemRangeUp:
		return "RangeUp"
	case ItemBombPush:
		return "BombPush"
	case ItemWallHack:
		return "WallHack"
	}
	return "Unknown"
}

// rollItem 掉落表：0-49 炸弹数，50-79 范围，80-89 推炸弹，90-99 穿墙
func rollItem(r int) ItemType {
	switch {
	case r < 50:
		return ItemBombsUp
	case r < 80:
		return ItemRangeUp
	case r < 90:
		return ItemBombPush
	}
	return ItemWallHack
}

// Item 地上的道具
type Item struct {
	ID   int32
	Pos  grid.Position
	Type ItemType
}
