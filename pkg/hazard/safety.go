package hazard

import "bombhazard/pkg/grid"

// IsSafe 检查格子当前是否安全
//
// 以下情况不安全：
//  1. 格子正在燃烧
//  2. 格子上有炸弹
//  3. 与某枚炸弹同行或同列、距离不超过其范围，且两者之间（不含端点）没有防火格子
//
// 每个方向只看最近的一枚威胁炸弹：近的被挡住，远的必然也被挡住。
func IsSafe(p grid.Position, fire grid.PositionSet, blasts Blasts, fireproof grid.PositionSet) bool {
	if fire.Has(p) {
		return false
	}

	// 每个方向最近威胁炸弹的距离，0 表示无威胁
	var closest [4]int
	for bomb, r := range blasts {
		if bomb == p {
			return false
		}
		dir, dist, aligned := p.Toward(bomb)
		if !aligned {
			continue
		}
		// 同行或同列时直线距离就是格子差
		if float64(dist) > float64(r) {
			continue
		}
		if closest[dir] == 0 || dist < closest[dir] {
			closest[dir] = dist
		}
	}

	for _, dir := range grid.Directions {
		dist := closest[dir]
		if dist == 0 {
			continue
		}
		if !shielded(p, dir, dist, fireproof) {
			return false
		}
	}
	return true
}

// shielded 检查 p 与 dir 方向 dist 格处之间是否有防火格子
func shielded(p grid.Position, dir grid.Direction, dist int, fireproof grid.PositionSet) bool {
	for i := 1; i < dist; i++ {
		if fireproof.Has(p.Offset(dir, i)) {
			return true
		}
	}
	return false
}

// StorySafe 剧情模式的安全判定
func (s Snapshot) StorySafe(p grid.Position) bool {
	if s.Sweep != nil && s.Sweep.Threatens(p) {
		return false
	}
	return IsSafe(p, s.Fire, s.Blasts, s.Fireproof)
}

// PositionIsSafe 对战模式的安全判定：站在墙体格子上视为安全
func (s Snapshot) PositionIsSafe(p grid.Position) bool {
	if s.Walls.Has(p) {
		return true
	}
	return s.StorySafe(p)
}
