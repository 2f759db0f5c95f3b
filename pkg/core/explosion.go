package core

import (
	"sort"

	"bombhazard/pkg/grid"
)

// explodeBombs 引爆所有引线燃尽的炸弹
//
// 火焰从炸弹所在格子沿四个方向扩散 Range 格，遇到防火格子（墙、砖块、未爆炸的炸弹）即停止，
// 并点燃该格子：砖块开始碎裂，炸弹引线缩短，下一次检查时连锁引爆。
func (g *Game) explodeBombs() {
	var exploding []*Bomb
	remaining := g.Bombs[:0]
	for _, bomb := range g.Bombs {
		if bomb.IsExploded() {
			exploding = append(exploding, bomb)
		} else {
			remaining = append(remaining, bomb)
		}
	}
	if len(exploding) == 0 {
		return
	}
	g.Bombs = remaining

	fireproof := g.Map.Walls()
	for _, bomb := range g.Bombs {
		fireproof.Add(bomb.Pos)
	}

	sort.Slice(exploding, func(i, j int) bool { return exploding[i].ID < exploding[j].ID })
	for _, bomb := range exploding {
		if bomb.HasOwner {
			g.refundBomb(bomb.OwnerID)
		}
		g.emit(Event{Kind: EventExplosion, Pos: bomb.Pos, PlayerID: bomb.OwnerID})

		g.spawnFire(bomb.Pos)
		for _, dir := range grid.Directions {
			for i := 1; i <= bomb.Range; i++ {
				p := bomb.Pos.Offset(dir, i)
				if fireproof.Has(p) {
					g.burn(p)
					break
				}
				g.spawnFire(p)
			}
		}
	}
}

// spawnFire 在格子上生成火焰，已有火焰时重置计时
func (g *Game) spawnFire(p grid.Position) {
	for _, f := range g.Fires {
		if f.Pos == p {
			*f = *NewFire(f.ID, p)
			return
		}
	}
	g.Fires = append(g.Fires, NewFire(g.nextEntityID(), p))
}

// burnFires 每帧所有着火的格子都会灼烧一次
func (g *Game) burnFires() {
	for _, f := range g.Fires {
		g.burn(f.Pos)
	}
}

// burn 灼烧一个格子
// 站在墙上的玩家（穿墙中）不受影响
func (g *Game) burn(p grid.Position) {
	onWall := g.Map.IsWall(p)
	for _, player := range g.Players {
		if !player.Dead && player.Pos == p && !onWall {
			g.killPlayer(player, DeathByFire)
		}
	}
	for _, bomb := range g.Bombs {
		if bomb.Pos == p {
			bomb.Ignite()
		}
	}
	if g.Map.StartCrumbling(p) {
		g.emit(Event{Kind: EventBrickBurning, Pos: p})
	}
	g.removeItemsAt(p)
}

func (g *Game) removeItemsAt(p grid.Position) {
	kept := g.Items[:0]
	for _, item := range g.Items {
		if item.Pos == p {
			g.emit(Event{Kind: EventItemBurned, Pos: p, Item: item.Type})
			continue
		}
		kept = append(kept, item)
	}
	g.Items = kept
}
