package hazard

import (
	"container/list"

	"bombhazard/pkg/grid"
)

// maxSearchDepth 搜索深度上限，防止在无边界的快照上无限扩散
const maxSearchDepth = 128

// pushScanRange 推炸弹逃生时沿直线检查的最大格数
const pushScanRange = 5

type searchNode struct {
	pos   grid.Position
	first grid.Direction // 从起点出发的第一步
	last  grid.Direction // 到达该节点的最后一步
	depth int
}

// 按第一步方向分别记录访问，这样同一深度下经由不同第一步到达的安全格子都能被收集
type visitKey struct {
	pos   grid.Position
	first grid.Direction
}

// searchSafe BFS 寻找最近的安全格子，返回所有能以最短步数到达安全格子的第一步方向
// 起点本身安全时返回空集合
func searchSafe(start grid.Position, safe, passable func(grid.Position) bool) grid.DirectionSet {
	var result grid.DirectionSet
	if safe(start) {
		return result
	}

	queue := list.New()
	visited := make(map[visitKey]bool)
	for _, d := range grid.Directions {
		next := start.Offset(d, 1)
		if !passable(next) {
			continue
		}
		visited[visitKey{pos: next, first: d}] = true
		queue.PushBack(&searchNode{pos: next, first: d, last: d, depth: 1})
	}

	found := 0 // 第一次找到安全格子时的深度，0 表示尚未找到
	for queue.Len() > 0 {
		n := queue.Remove(queue.Front()).(*searchNode)
		if found > 0 && n.depth > found {
			break
		}

		if safe(n.pos) {
			found = n.depth
			result = result.With(n.first)
			continue
		}

		// 已经找到时，再扩展只会得到更长的路径
		if found > 0 || n.depth >= maxSearchDepth {
			continue
		}

		for _, d := range grid.Directions {
			if d == n.last.Opposite() {
				continue
			}
			next := n.pos.Offset(d, 1)
			if next == start || !passable(next) {
				continue
			}
			key := visitKey{pos: next, first: n.first}
			if visited[key] {
				continue
			}
			visited[key] = true
			queue.PushBack(&searchNode{pos: next, first: n.first, last: d, depth: n.depth + 1})
		}
	}

	return result
}

// DirectionsToClosestSafe 从 start 出发，返回通往最近安全格子的所有第一步方向
//
// 只经过不在 impassable 中且没有着火的格子。起点已经安全或无路可逃时返回空集合。
// 结果对同样的输入是确定的，随机选择由调用方完成。
func DirectionsToClosestSafe(start grid.Position, fire grid.PositionSet, blasts Blasts, fireproof, impassable grid.PositionSet) grid.DirectionSet {
	safe := func(p grid.Position) bool {
		return IsSafe(p, fire, blasts, fireproof)
	}
	passable := func(p grid.Position) bool {
		return !impassable.Has(p) && !fire.Has(p)
	}
	return searchSafe(start, safe, passable)
}

// EscapeDirections 按快照的判定风格搜索逃生方向
// 找不到路且 mover 能推炸弹时，把可以推动的炸弹所在方向也视为出路
func (s Snapshot) EscapeDirections(start grid.Position, m Mover) grid.DirectionSet {
	passable := func(p grid.Position) bool {
		return s.Passable(p, m)
	}
	result := searchSafe(start, s.Safe, passable)
	if result.Empty() && m.CanPushBombs && !s.Safe(start) {
		result = s.pushDirections(start, m)
	}
	return result
}

// pushDirections 沿直线找最近的可推动炸弹
// 炸弹后面被挡住时这个方向直接放弃，不再越过它继续找
func (s Snapshot) pushDirections(start grid.Position, m Mover) grid.DirectionSet {
	var result grid.DirectionSet
	limit := pushScanRange
	for _, d := range grid.Directions {
		for i := 1; i <= limit; i++ {
			p := start.Offset(d, i)
			_, isBomb := s.Blasts[p]
			if s.Fire.Has(p) || (!isBomb && !s.Passable(p, m)) {
				break
			}
			if !isBomb {
				continue
			}
			if s.Stoppers.Has(p.Offset(d, 1)) {
				break
			}
			if i < limit {
				result = 0
				limit = i
			}
			result = result.With(d)
			break
		}
	}
	return result
}
