package hazard

import "bombhazard/pkg/grid"

// ActionKind 行动类型
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionMove
	ActionDropBomb
)

// Action AI 选出的行动
type Action struct {
	Kind ActionKind
	Dir  grid.Direction // 仅 ActionMove 有效
}

func (a Action) String() string {
	switch a.Kind {
	case ActionMove:
		return "Move(" + a.Dir.String() + ")"
	case ActionDropBomb:
		return "DropBomb"
	}
	return "None"
}

// CanPlaceAndEscape 假设在 candidate 放一枚范围为 bombRange 的炸弹，检查之后是否仍有逃生方向
// 不会修改快照中的任何集合
func (s Snapshot) CanPlaceAndEscape(candidate grid.Position, bombRange int, m Mover) bool {
	if s.BombBlockers.Has(candidate) {
		return false
	}

	next := s
	next.Blasts = s.Blasts.With(candidate, bombRange+s.RangeMargin)
	next.Impassable = s.Impassable.With(candidate)
	next.Fireproof = s.Fireproof.With(candidate)
	return !next.EscapeDirections(candidate, m).Empty()
}

// CanPlaceAndEscape 函数形式：只看火焰、炸弹、防火和通行四类输入
func CanPlaceAndEscape(candidate grid.Position, bombRange int, fire grid.PositionSet, blasts Blasts, fireproof, impassable grid.PositionSet) bool {
	withBomb := blasts.With(candidate, bombRange)
	return !DirectionsToClosestSafe(candidate, fire, withBomb, fireproof, impassable.With(candidate)).Empty()
}

// DamageMade 统计炸弹在四个方向上能炸到的可破坏墙数量，每条射线遇到防火格子即停止
func DamageMade(bomb grid.Position, bombRange int, fireproof, destructible grid.PositionSet) int {
	count := 0
	for _, d := range grid.Directions {
		for i := 1; i <= bombRange; i++ {
			p := bomb.Offset(d, i)
			if destructible.Has(p) {
				count++
			}
			if fireproof.Has(p) {
				break
			}
		}
	}
	return count
}

// DestroyBlocks 在"原地放炸弹"和"走到相邻格子再放"之间选出能炸毁最多可破坏墙的行动
//
// 原地放置要求还有炸弹且放下后能逃生；相邻格子要求可通行、安全、且在那里放置后能逃生。
// 打平时优先原地，其次按 grid.Directions 顺序。没有任何收益时返回 false。
func (s Snapshot) DestroyBlocks(pos grid.Position, m Mover) (Action, bool) {
	action := Action{Kind: ActionNone}
	best := 0

	if m.BombsAvailable > 0 && s.CanPlaceAndEscape(pos, m.BombRange, m) {
		best = DamageMade(pos, m.BombRange, s.Fireproof, s.Destructible)
		if best > 0 {
			action = Action{Kind: ActionDropBomb}
		}
	}

	for _, d := range grid.Directions {
		next := pos.Offset(d, 1)
		if !s.Passable(next, m) || !s.Safe(next) {
			continue
		}
		if !s.CanPlaceAndEscape(next, m.BombRange, m) {
			continue
		}
		if damage := DamageMade(next, m.BombRange, s.Fireproof, s.Destructible); damage > best {
			best = damage
			action = Action{Kind: ActionMove, Dir: d}
		}
	}

	return action, action.Kind != ActionNone
}
