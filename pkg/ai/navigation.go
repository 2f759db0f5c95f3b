package ai

import "bombhazard/pkg/grid"

const (
	// scanRange 沿直线寻找道具或躲避敌人时检查的格数上限（不含）
	scanRange = 5
	// enemyAvoidanceRange 逃离时与敌人保持的切比雪夫距离
	enemyAvoidanceRange = 2
	// huntLockRange 该距离内改为追击最近的敌人
	huntLockRange = 3
)

// CanKill 在 bomb 放置的炸弹能否波及某个敌人
// 敌人左右（或上下）两侧都是石墙时，同一行（列）的火焰到不了它
func CanKill(bomb grid.Position, bombRange int, enemies []grid.Position, stone grid.PositionSet) bool {
	for _, e := range enemies {
		if e.Y == bomb.Y && abs(e.X-bomb.X) <= bombRange &&
			!(stone.Has(e.Offset(grid.DirRight, 1)) && stone.Has(e.Offset(grid.DirLeft, 1))) {
			return true
		}
		if e.X == bomb.X && abs(e.Y-bomb.Y) <= bombRange &&
			!(stone.Has(e.Offset(grid.DirDown, 1)) && stone.Has(e.Offset(grid.DirUp, 1))) {
			return true
		}
	}
	return false
}

// PlayersInRange 是否有玩家在以 p 为中心、半径 r 的方框内
func PlayersInRange(p grid.Position, players []grid.Position, r int) bool {
	for _, o := range players {
		if abs(o.Y-p.Y) <= r && abs(o.X-p.X) <= r {
			return true
		}
	}
	return false
}

// scanLines 沿四个方向扫描，返回最早满足 hit 的方向集合
// 路上遇到不可通行或不安全的格子即停止该方向
func scanLines(bb *Blackboard, hit func(p, sideA, sideB grid.Position) bool) grid.DirectionSet {
	var result grid.DirectionSet
	limit := scanRange
	for _, d := range grid.Directions {
		for i := 1; i < limit; i++ {
			p := bb.Pos.Offset(d, i)
			if !bb.walkable(p) {
				break
			}
			a, b := d.Sides()
			if hit(p, p.Offset(a, 1), p.Offset(b, 1)) {
				if i < limit {
					result = 0
					limit = i
				}
				result = result.With(d)
				break
			}
		}
	}
	return result
}

// detectItems 朝附近道具走的方向
func detectItems(bb *Blackboard) grid.DirectionSet {
	if bb.Items.Len() == 0 {
		return 0
	}
	return scanLines(bb, func(p, sideA, sideB grid.Position) bool {
		return bb.Items.Has(p) ||
			(bb.walkable(sideA) && bb.Items.Has(sideA)) ||
			(bb.walkable(sideB) && bb.Items.Has(sideB))
	})
}

// flee 敌人靠近时，朝能甩开敌人的方向移动
func flee(bb *Blackboard) grid.DirectionSet {
	if !PlayersInRange(bb.Pos, bb.Enemies, enemyAvoidanceRange) {
		return 0
	}
	clear := func(p grid.Position) bool {
		return bb.walkable(p) && !PlayersInRange(p, bb.Enemies, enemyAvoidanceRange)
	}
	return scanLines(bb, func(p, sideA, sideB grid.Position) bool {
		return PlayersInRange(p, bb.Enemies, enemyAvoidanceRange) || clear(sideA) || clear(sideB)
	})
}

// hunt 朝目标敌人靠近的方向
//
// 附近有敌人时锁定最近的一个，否则锁定玩家列表中排在自己后面的那个。
// 目标同行或同列但正好隔着一根石柱时，先绕到旁边。
func hunt(bb *Blackboard) grid.DirectionSet {
	target, ok := huntTarget(bb)
	if !ok {
		return 0
	}
	best := bb.Pos.Distance(target)
	if best <= 1 {
		return 0
	}

	var result grid.DirectionSet
	if dir, _, aligned := bb.Pos.Toward(target); aligned && bb.Stone.Has(bb.Pos.Offset(dir, 1)) {
		a, b := dir.Sides()
		for _, side := range []grid.Direction{b, a} {
			if bb.walkable(bb.Pos.Offset(side, 1)) {
				result = result.With(side)
			}
		}
	}

	for _, d := range grid.Directions {
		if result.Len() == 2 {
			break
		}
		next := bb.Pos.Offset(d, 1)
		if bb.walkable(next) && next.Distance(target) < best {
			result = result.With(d)
		}
	}
	return result
}

func huntTarget(bb *Blackboard) (grid.Position, bool) {
	if len(bb.Enemies) == 0 {
		return grid.Position{}, false
	}

	if PlayersInRange(bb.Pos, bb.Enemies, huntLockRange) {
		var target grid.Position
		best := -1.0
		for _, e := range bb.Enemies {
			d := bb.Pos.Distance(e)
			if best < 0 || d < best || (d == best && bb.RNG.Intn(2) == 0) {
				best = d
				target = e
			}
		}
		return target, true
	}

	// 排在自己后面的存活玩家，没有则回到第一个
	alive := bb.Game.AlivePlayers()
	for i, p := range alive {
		if p.ID != bb.Player.ID {
			continue
		}
		for j := 1; j < len(alive); j++ {
			next := alive[(i+j)%len(alive)]
			if next.Team() != bb.Player.Team() {
				return next.Pos, true
			}
		}
	}
	return bb.Enemies[0], true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
