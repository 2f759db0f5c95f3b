package core

import (
	"time"

	"bombhazard/pkg/clock"
	"bombhazard/pkg/grid"
	"bombhazard/pkg/hazard"
)

// Player 玩家（纯逻辑，不包含渲染）
type Player struct {
	ID        int32
	Character CharacterType // 角色类型，同时作为队伍
	Pos       grid.Position
	Spawn     grid.Position
	Direction grid.Direction // 朝向
	Dead      bool
	Bot       bool

	BombsAvailable int // 剩余可放置炸弹数
	BombRange      int // 炸弹爆炸范围

	WallHack bool // 可以穿过砖块
	BombPush bool // 可以推炸弹

	MoveCooldown clock.Cooldown
}

// NewPlayer 创建新玩家
func NewPlayer(id int32, spawn grid.Position, character CharacterType, moveCooldown time.Duration) *Player {
	return &Player{
		ID:             id,
		Character:      character,
		Pos:            spawn,
		Spawn:          spawn,
		Direction:      grid.DirDown,
		BombsAvailable: DefaultBombsAvailable,
		BombRange:      DefaultBombRange,
		MoveCooldown:   clock.NewCooldown(moveCooldown),
	}
}

// Team 队伍标识
func (p *Player) Team() int32 {
	return int32(p.Character)
}

// Mover 危险场使用的移动能力描述
func (p *Player) Mover() hazard.Mover {
	return hazard.Mover{
		CanCrossDestructibles: p.WallHack,
		CanPushBombs:          p.BombPush,
		BombsAvailable:        p.BombsAvailable,
		BombRange:             p.BombRange,
	}
}

// Move 尝试向 dir 移动一格（返回是否成功移动）
// 前方是炸弹且能推炸弹时推动炸弹，玩家留在原地
func (p *Player) Move(dir grid.Direction, game *Game) bool {
	if p.Dead {
		return false
	}
	p.Direction = dir
	if !p.MoveCooldown.Ready() {
		return false
	}

	next := p.Pos.Offset(dir, 1)
	if bomb := game.bombAt(next); bomb != nil {
		if p.BombPush && !bomb.Moving {
			bomb.Push(dir)
		}
		return false
	}

	switch game.Map.GetTile(next) {
	case TileWall:
		return false
	case TileBrick:
		if !p.WallHack {
			return false
		}
	}

	p.Pos = next
	p.MoveCooldown.Trigger()
	game.pickUpItem(p)
	return true
}

// PlaceBomb 放置炸弹（返回是否成功）
// 需要还有炸弹，且脚下没有墙、砖块或其他炸弹
func (p *Player) PlaceBomb(game *Game) *Bomb {
	if p.Dead || p.BombsAvailable <= 0 {
		return nil
	}
	if game.Map.IsWall(p.Pos) || game.bombAt(p.Pos) != nil {
		return nil
	}

	p.BombsAvailable--
	bomb := NewBomb(game.nextEntityID(), p.Pos, p.ID, p.BombRange)
	game.AddBomb(bomb)
	return bomb
}

// applyItem 拾取道具
func (p *Player) applyItem(t ItemType) {
	switch t {
	case ItemBombsUp:
		p.BombsAvailable++
	case ItemRangeUp:
		p.BombRange++
	case ItemBombPush:
		p.BombPush = true
	case ItemWallHack:
		p.WallHack = true
	}
}
