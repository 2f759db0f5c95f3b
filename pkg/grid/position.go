package grid

import (
	"fmt"
	"math"
	"sort"
)

// Position 格子坐标 (y, x)
// y 轴纵向，正方向向下；x 轴横向，正方向向右；0 点在左上角
type Position struct {
	Y, X int
}

// Offset 沿方向偏移 distance 格
func (p Position) Offset(dir Direction, distance int) Position {
	dy, dx := dir.Delta()
	return Position{Y: p.Y + dy*distance, X: p.X + dx*distance}
}

// Distance 两点的直线距离
func (p Position) Distance(o Position) float64 {
	return math.Hypot(float64(p.Y-o.Y), float64(p.X-o.X))
}

// Toward 若 o 与 p 同行或同列，返回 p 指向 o 的方向和格子数
func (p Position) Toward(o Position) (Direction, int, bool) {
	switch {
	case p == o:
		return 0, 0, false
	case p.Y == o.Y:
		if o.X > p.X {
			return DirRight, o.X - p.X, true
		}
		return DirLeft, p.X - o.X, true
	case p.X == o.X:
		if o.Y > p.Y {
			return DirDown, o.Y - p.Y, true
		}
		return DirUp, p.Y - o.Y, true
	}
	return 0, 0, false
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Y, p.X)
}

// MapSize 地图尺寸
type MapSize struct {
	Rows    int
	Columns int
}

// Contains 检查坐标是否在地图内
func (s MapSize) Contains(p Position) bool {
	return p.Y >= 0 && p.Y < s.Rows && p.X >= 0 && p.X < s.Columns
}

// PositionSet 坐标集合，nil 集合可安全读取
type PositionSet map[Position]struct{}

// NewPositionSet 创建集合
func NewPositionSet(positions ...Position) PositionSet {
	s := make(PositionSet, len(positions))
	for _, p := range positions {
		s[p] = struct{}{}
	}
	return s
}

func (s PositionSet) Has(p Position) bool {
	_, ok := s[p]
	return ok
}

func (s PositionSet) Add(p Position) {
	s[p] = struct{}{}
}

func (s PositionSet) Remove(p Position) {
	delete(s, p)
}

func (s PositionSet) Len() int {
	return len(s)
}

// Clone 复制集合（nil 复制为空集合）
func (s PositionSet) Clone() PositionSet {
	c := make(PositionSet, len(s)+1)
	for p := range s {
		c[p] = struct{}{}
	}
	return c
}

// With 返回加入 p 之后的新集合，不修改原集合
func (s PositionSet) With(p Position) PositionSet {
	c := s.Clone()
	c.Add(p)
	return c
}

// Union 合并多个集合为新集合
func Union(sets ...PositionSet) PositionSet {
	n := 0
	for _, s := range sets {
		n += len(s)
	}
	out := make(PositionSet, n)
	for _, s := range sets {
		for p := range s {
			out[p] = struct{}{}
		}
	}
	return out
}

// Sorted 按行优先排序输出，保证结果稳定
func (s PositionSet) Sorted() []Position {
	out := make([]Position, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}
