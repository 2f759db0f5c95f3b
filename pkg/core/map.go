package core

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"bombhazard/pkg/clock"
	"bombhazard/pkg/grid"
)

// TileType 地图块类型
type TileType uint8

const (
	TileEmpty TileType = iota // 空地
	TileWall                  // 不可破坏的墙
	TileBrick                 // 可破坏的砖块
)

func (t TileType) String() string {
	switch t {
	case TileEmpty:
		return "Empty"
	case TileWall:
		return "Wall"
	case TileBrick:
		return "Brick"
	}
	return "Unknown"
}

// ErrMapTooDense 可放置砖块的格子不足
var ErrMapTooDense = errors.New("not enough free tiles for bricks")

// GameMap 游戏地图（核心逻辑，不包含渲染）
type GameMap struct {
	Tiles [][]TileType
	Size  grid.MapSize

	crumbling map[grid.Position]*clock.Timer // 正在碎裂的砖块，碎裂期间仍是实体
}

// SpawnPositions 出生点，按加入顺序使用
func SpawnPositions(size grid.MapSize) []grid.Position {
	r, c := size.Rows, size.Columns
	return []grid.Position{
		{Y: 1, X: 1},
		{Y: r - 2, X: c - 2},
		{Y: 1, X: c - 2},
		{Y: r - 2, X: 1},
		{Y: 3, X: 5},
		{Y: r - 4, X: c - 6},
		{Y: 3, X: c - 6},
		{Y: r - 4, X: 5},
	}
}

// NewGameMap 生成地图：外圈和偶数坐标的柱子是墙，其余空地按比例随机放置砖块
// 每个出生点及其上下左右四格保持空地
func NewGameMap(size grid.MapSize, fillPercent int, spawns []grid.Position, rng *rand.Rand) (*GameMap, error) {
	m := &GameMap{
		Tiles:     make([][]TileType, size.Rows),
		Size:      size,
		crumbling: make(map[grid.Position]*clock.Timer),
	}

	candidates := grid.NewPositionSet()
	for y := 0; y < size.Rows; y++ {
		m.Tiles[y] = make([]TileType, size.Columns)
		for x := 0; x < size.Columns; x++ {
			border := y == 0 || x == 0 || y == size.Rows-1 || x == size.Columns-1
			pillar := y%2 == 0 && x%2 == 0
			if border || pillar {
				m.Tiles[y][x] = TileWall
				continue
			}
			candidates.Add(grid.Position{Y: y, X: x})
		}
	}
	passable := candidates.Len()

	for _, spawn := range spawns {
		candidates.Remove(spawn)
		for _, d := range grid.Directions {
			candidates.Remove(spawn.Offset(d, 1))
		}
	}

	need := passable * fillPercent / 100
	if candidates.Len() < need {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrMapTooDense, candidates.Len(), need)
	}

	// 先排序再洗牌，同一个种子总是得到同一张地图
	free := candidates.Sorted()
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	for _, p := range free[:need] {
		m.Tiles[p.Y][p.X] = TileBrick
	}
	return m, nil
}

// GetTile 获取指定位置的地图块，地图外视为墙
func (m *GameMap) GetTile(p grid.Position) TileType {
	if !m.Size.Contains(p) {
		return TileWall
	}
	return m.Tiles[p.Y][p.X]
}

// SetTile 设置指定位置的地图块
func (m *GameMap) SetTile(p grid.Position, tile TileType) {
	if !m.Size.Contains(p) {
		return
	}
	m.Tiles[p.Y][p.X] = tile
	if tile != TileBrick {
		delete(m.crumbling, p)
	}
}

func (m *GameMap) IsStoneWall(p grid.Position) bool {
	return m.GetTile(p) == TileWall
}

// IsWall 墙或砖块
func (m *GameMap) IsWall(p grid.Position) bool {
	return m.GetTile(p) != TileEmpty
}

func (m *GameMap) IsBrick(p grid.Position) bool {
	return m.GetTile(p) == TileBrick
}

// StartCrumbling 砖块被火焰波及后开始碎裂，已在碎裂的砖块不受影响
func (m *GameMap) StartCrumbling(p grid.Position) bool {
	if !m.IsBrick(p) {
		return false
	}
	if _, ok := m.crumbling[p]; ok {
		return false
	}
	t := clock.NewTimer(CrumbleDuration)
	m.crumbling[p] = &t
	return true
}

func (m *GameMap) IsCrumbling(p grid.Position) bool {
	_, ok := m.crumbling[p]
	return ok
}

// tickCrumbling 推进碎裂计时，返回本帧碎裂完成变为空地的格子
func (m *GameMap) tickCrumbling(dt time.Duration) []grid.Position {
	var done []grid.Position
	for p, t := range m.crumbling {
		t.Tick(dt)
		if t.Finished() {
			done = append(done, p)
		}
	}
	for _, p := range done {
		m.SetTile(p, TileEmpty)
	}
	return grid.NewPositionSet(done...).Sorted()
}

// Walls 所有墙和砖块
func (m *GameMap) Walls() grid.PositionSet {
	return m.collect(func(t TileType) bool { return t != TileEmpty })
}

// StoneWalls 所有不可破坏的墙
func (m *GameMap) StoneWalls() grid.PositionSet {
	return m.collect(func(t TileType) bool { return t == TileWall })
}

// Bricks 所有砖块（含正在碎裂的）
func (m *GameMap) Bricks() grid.PositionSet {
	return m.collect(func(t TileType) bool { return t == TileBrick })
}

func (m *GameMap) collect(match func(TileType) bool) grid.PositionSet {
	out := grid.NewPositionSet()
	for y, row := range m.Tiles {
		for x, t := range row {
			if match(t) {
				out.Add(grid.Position{Y: y, X: x})
			}
		}
	}
	return out
}
