package grid

import (
	"math/bits"
	"strings"
)

// Direction 移动方向
type Direction uint8

const (
	DirLeft  Direction = iota // Left
	DirRight                  // Right
	DirUp                     // Up
	DirDown                   // Down
)

// Directions 方向遍历顺序：右、左、上、下
// 搜索和打平规则都依赖这个顺序
var Directions = [4]Direction{DirRight, DirLeft, DirUp, DirDown}

// String 返回方向的字符串表示
func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "Left"
	case DirRight:
		return "Right"
	case DirUp:
		return "Up"
	case DirDown:
		return "Down"
	}
	return "Unknown"
}

// Delta 返回 (dy, dx)
func (d Direction) Delta() (int, int) {
	switch d {
	case DirLeft:
		return 0, -1
	case DirRight:
		return 0, 1
	case DirUp:
		return -1, 0
	case DirDown:
		return 1, 0
	}
	return 0, 0
}

// Opposite 反方向
func (d Direction) Opposite() Direction {
	switch d {
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	case DirUp:
		return DirDown
	default:
		return DirUp
	}
}

// Sides 与 d 垂直的两个方向
func (d Direction) Sides() (Direction, Direction) {
	if d == DirLeft || d == DirRight {
		return DirUp, DirDown
	}
	return DirLeft, DirRight
}

// DirectionSet 方向集合（位图）
type DirectionSet uint8

// NewDirectionSet 创建方向集合
func NewDirectionSet(dirs ...Direction) DirectionSet {
	var s DirectionSet
	for _, d := range dirs {
		s = s.With(d)
	}
	return s
}

func (s DirectionSet) Has(d Direction) bool {
	return s&(1<<d) != 0
}

func (s DirectionSet) With(d Direction) DirectionSet {
	return s | 1<<d
}

func (s DirectionSet) Len() int {
	return bits.OnesCount8(uint8(s))
}

func (s DirectionSet) Empty() bool {
	return s == 0
}

// Slice 按 Directions 顺序展开
func (s DirectionSet) Slice() []Direction {
	out := make([]Direction, 0, s.Len())
	for _, d := range Directions {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s DirectionSet) String() string {
	names := make([]string, 0, 4)
	for _, d := range s.Slice() {
		names = append(names, d.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}
