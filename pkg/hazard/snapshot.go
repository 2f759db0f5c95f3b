// Package hazard 危险场：基于某一帧的世界快照判断格子是否安全，
// 并为 AI 搜索逃生方向、评估放置炸弹是否可以全身而退。
//
// 包内所有函数都是纯函数，不持有也不修改任何状态。
package hazard

import "bombhazard/pkg/grid"

// Blasts 炸弹位置 -> 爆炸范围
type Blasts map[grid.Position]int

// Clone 复制
func (b Blasts) Clone() Blasts {
	c := make(Blasts, len(b)+1)
	for p, r := range b {
		c[p] = r
	}
	return c
}

// With 返回加入一枚炸弹后的新映射，同一格子保留较大的范围
func (b Blasts) With(p grid.Position, r int) Blasts {
	c := b.Clone()
	if old, ok := c[p]; !ok || r > old {
		c[p] = r
	}
	return c
}

// Threat 额外的危险源（例如死亡之墙）
type Threat interface {
	Threatens(p grid.Position) bool
}

// Mode 安全判定风格
type Mode uint8

const (
	// ModeStory 剧情模式：站在墙上不算安全
	ModeStory Mode = iota
	// ModeBattle 对战模式：墙体格子视为安全
	ModeBattle
)

// Mover 移动者的决策输入
type Mover struct {
	CanCrossDestructibles bool // 可以穿过可破坏墙
	CanPushBombs          bool // 可以推动炸弹
	BombsAvailable        int  // 剩余可放置炸弹数
	BombRange             int  // 炸弹爆炸范围
}

// Snapshot 某一帧的只读世界快照，由调用方每帧重新构建
type Snapshot struct {
	Walls        grid.PositionSet // 所有墙体（含可破坏墙）
	Fire         grid.PositionSet // 正在燃烧的格子
	Blasts       Blasts           // 已放置的炸弹
	Fireproof    grid.PositionSet // 阻挡火焰的格子
	Impassable   grid.PositionSet // 不可通行的格子
	Destructible grid.PositionSet // 可破坏墙
	Bricks       grid.PositionSet // 所有砖块（含碎裂中的），穿墙者可以通过
	BombBlockers grid.PositionSet // 不能放置炸弹的格子
	Stoppers     grid.PositionSet // 阻止被推动炸弹滑行的格子

	// Sweep 可选的额外危险源，为 nil 时忽略
	Sweep Threat
	Mode  Mode

	// RangeMargin 假设新炸弹的范围比实际多出的格子数
	RangeMargin int
}

// Passable mover 能否走进 p：着火的格子不走，穿墙者可以走进砖块
func (s Snapshot) Passable(p grid.Position, m Mover) bool {
	if s.Fire.Has(p) {
		return false
	}
	if !s.Impassable.Has(p) {
		return true
	}
	return m.CanCrossDestructibles && s.Bricks.Has(p)
}

// Safe 按快照的判定风格检查格子
func (s Snapshot) Safe(p grid.Position) bool {
	if s.Mode == ModeBattle {
		return s.PositionIsSafe(p)
	}
	return s.StorySafe(p)
}
