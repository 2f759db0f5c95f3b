package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bombhazard/pkg/clock"
	"bombhazard/pkg/grid"
	"bombhazard/pkg/wallofdeath"
)

func pos(y, x int) grid.Position {
	return grid.Position{Y: y, X: x}
}

// newTestGame 创建没有砖块的 11x15 对局
func newTestGame(t *testing.T, players int, roundDuration time.Duration) *Game {
	t.Helper()
	opts := DefaultOptions()
	opts.FillPercent = 0
	opts.Seed = 1
	opts.RoundDuration = roundDuration
	g, err := NewGame(opts)
	require.NoError(t, err)
	for i := 0; i < players; i++ {
		_, err := g.SpawnPlayer(int32(i+1), false, 0)
		require.NoError(t, err)
	}
	return g
}

// step 以固定帧长推进至少 d
func step(g *Game, d time.Duration) []Event {
	var events []Event
	for elapsed := time.Duration(0); elapsed < d; elapsed += FixedDeltaTime {
		events = append(events, g.Update(FixedDeltaTime)...)
	}
	return events
}

// stepUntil 推进直到条件成立，最多 max 帧
func stepUntil(t *testing.T, g *Game, max int, cond func() bool) []Event {
	t.Helper()
	var events []Event
	for i := 0; i < max; i++ {
		if cond() {
			return events
		}
		events = append(events, g.Update(FixedDeltaTime)...)
	}
	require.True(t, cond(), "条件在 %d 帧内没有成立", max)
	return events
}

func firePositions(g *Game) grid.PositionSet {
	s := grid.NewPositionSet()
	for _, f := range g.Fires {
		s.Add(f.Pos)
	}
	return s
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func TestOptionsValidate(t *testing.T) {
	valid := DefaultOptions()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(o *Options)
	}{
		{"even rows", func(o *Options) { o.Size.Rows = 10 }},
		{"too small", func(o *Options) { o.Size = grid.MapSize{Rows: 5, Columns: 5} }},
		{"fill", func(o *Options) { o.FillPercent = 101 }},
		{"no seats", func(o *Options) { o.Seats = 0 }},
		{"too many seats", func(o *Options) { o.Seats = MaxPlayers + 1 }},
		{"no clock", func(o *Options) { o.RoundDuration = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.modify(&o)
			assert.ErrorIs(t, o.Validate(), ErrInvalidOptions)
		})
	}
}

func TestSpawnPlayer(t *testing.T) {
	g := newTestGame(t, 0, DefaultRoundDuration)

	for i, want := range SpawnPositions(g.Map.Size)[:4] {
		p, err := g.SpawnPlayer(int32(i+10), i%2 == 1, 0)
		require.NoError(t, err)
		assert.Equal(t, want, p.Pos)
		assert.Equal(t, CharacterForSeat(i), p.Character)
		assert.Equal(t, DefaultBombsAvailable, p.BombsAvailable)
		assert.Equal(t, DefaultBombRange, p.BombRange)
	}

	_, err := g.SpawnPlayer(99, false, 0)
	assert.ErrorIs(t, err, ErrNoSpawn)
	assert.ErrorIs(t, g.AddPlayer(NewPlayer(10, pos(1, 1), CharacterWhite, 0)), ErrDuplicatePlayer)
}

func TestRemovePlayerFreesSeat(t *testing.T) {
	g := newTestGame(t, 3, DefaultRoundDuration)
	spawns := SpawnPositions(g.Map.Size)

	require.True(t, ApplyInput(g, 2, Input{Bomb: true}))
	require.True(t, g.RemovePlayer(2))
	assert.False(t, g.RemovePlayer(2))
	assert.Nil(t, g.Player(2))
	require.Len(t, g.Bombs, 1)
	assert.False(t, g.Bombs[0].HasOwner)

	p, err := g.SpawnPlayer(7, false, 0)
	require.NoError(t, err)
	assert.Equal(t, spawns[1], p.Pos)
	assert.Equal(t, CharacterForSeat(1), p.Character)

	p, err = g.SpawnPlayer(8, false, 0)
	require.NoError(t, err)
	assert.Equal(t, spawns[3], p.Pos)
}

func TestMovement(t *testing.T) {
	g := newTestGame(t, 2, DefaultRoundDuration)
	p := g.Player(1)
	p.MoveCooldown = clock.NewCooldown(150 * time.Millisecond)

	ApplyInput(g, 1, Input{Up: true})
	assert.Equal(t, pos(1, 1), p.Pos, "上方是墙")

	ApplyInput(g, 1, Input{Right: true})
	assert.Equal(t, pos(1, 2), p.Pos)

	ApplyInput(g, 1, Input{Right: true})
	assert.Equal(t, pos(1, 2), p.Pos, "冷却中")

	step(g, 150*time.Millisecond)
	ApplyInput(g, 1, Input{Right: true})
	assert.Equal(t, pos(1, 3), p.Pos)

	// 砖块只有穿墙时可以进入
	g.Map.SetTile(pos(1, 4), TileBrick)
	step(g, 150*time.Millisecond)
	ApplyInput(g, 1, Input{Right: true})
	assert.Equal(t, pos(1, 3), p.Pos)

	p.WallHack = true
	ApplyInput(g, 1, Input{Right: true})
	assert.Equal(t, pos(1, 4), p.Pos)
}

func TestPickUpItem(t *testing.T) {
	g := newTestGame(t, 2, DefaultRoundDuration)
	g.Items = append(g.Items, &Item{ID: 100, Pos: pos(1, 2), Type: ItemRangeUp})

	ApplyInput(g, 1, Input{Right: true})
	assert.Equal(t, DefaultBombRange+1, g.Player(1).BombRange)
	assert.Empty(t, g.Items)
}

func TestPlaceBomb(t *testing.T) {
	g := newTestGame(t, 2, DefaultRoundDuration)
	p := g.Player(1)

	assert.True(t, ApplyInput(g, 1, Input{Bomb: true}))
	assert.Equal(t, 0, p.BombsAvailable)
	require.Len(t, g.Bombs, 1)
	assert.Equal(t, pos(1, 1), g.Bombs[0].Pos)
	assert.Equal(t, DefaultBombRange, g.Bombs[0].Range)

	// 同一格不能重复放置
	p.BombsAvailable = 1
	assert.False(t, ApplyInput(g, 1, Input{Bomb: true}))

	// 站在炸弹上可以离开，但不能走回去
	ApplyInput(g, 1, Input{Right: true})
	assert.Equal(t, pos(1, 2), p.Pos)
	g.Update(FixedDeltaTime)
	ApplyInput(g, 1, Input{Left: true})
	assert.Equal(t, pos(1, 2), p.Pos)
}

func TestExplosion(t *testing.T) {
	g := newTestGame(t, 2, DefaultRoundDuration)
	p1, p2 := g.Player(1), g.Player(2)

	g.Map.SetTile(pos(1, 3), TileBrick)
	p1.BombRange = 3
	require.NotNil(t, p1.PlaceBomb(g))
	p1.Pos = pos(5, 5)
	p2.Pos = pos(4, 1)

	events := stepUntil(t, g, 200, func() bool { return len(g.Bombs) == 0 })
	assert.True(t, hasEvent(events, EventExplosion))
	assert.Equal(t, 1, p1.BombsAvailable, "爆炸后归还炸弹")

	// 向右被砖块挡住，向上向左被墙挡住
	want := grid.NewPositionSet(pos(1, 1), pos(1, 2), pos(2, 1), pos(3, 1), pos(4, 1))
	assert.Equal(t, want, firePositions(g))

	assert.True(t, g.Map.IsCrumbling(pos(1, 3)))
	assert.True(t, g.Map.IsWall(pos(1, 3)))

	assert.True(t, p2.Dead)
	assert.False(t, p1.Dead)
	assert.True(t, g.Over)
	assert.Equal(t, int32(1), g.WinnerID)
}

func TestFireExpiresAndBrickCrumbles(t *testing.T) {
	g := newTestGame(t, 3, DefaultRoundDuration)
	g.Map.SetTile(pos(1, 3), TileBrick)
	require.NotNil(t, g.Player(1).PlaceBomb(g))
	g.Player(1).Pos = pos(5, 5)

	stepUntil(t, g, 200, func() bool { return len(g.Bombs) == 0 })
	require.NotEmpty(t, g.Fires)

	events := step(g, FireDuration+FixedDeltaTime)
	assert.Empty(t, g.Fires)
	assert.True(t, hasEvent(events, EventBrickDestroyed))
	assert.Equal(t, TileEmpty, g.Map.GetTile(pos(1, 3)))
}

func TestChainReaction(t *testing.T) {
	g := newTestGame(t, 3, DefaultRoundDuration)
	p1, p2 := g.Player(1), g.Player(2)

	require.NotNil(t, p1.PlaceBomb(g))
	p1.Pos = pos(9, 5)
	step(g, time.Second)

	p2.Pos = pos(1, 3)
	require.NotNil(t, p2.PlaceBomb(g))
	p2.Pos = pos(9, 9)

	stepUntil(t, g, 200, func() bool { return len(g.Bombs) < 2 })
	require.Len(t, g.Bombs, 1, "第二枚炸弹被点燃但还没爆炸")
	assert.Equal(t, 0, p2.BombsAvailable)

	step(g, ShortenedFuse+FixedDeltaTime)
	assert.Empty(t, g.Bombs)
	assert.Equal(t, 1, p2.BombsAvailable)
	assert.True(t, firePositions(g).Has(pos(1, 5)), "第二枚炸弹的火焰")
}

func TestPushBomb(t *testing.T) {
	g := newTestGame(t, 2, DefaultRoundDuration)
	p := g.Player(1)
	p.Pos = pos(1, 2)
	bomb := NewBomb(1000, pos(1, 3), 2, 2)
	g.AddBomb(bomb)

	ApplyInput(g, 1, Input{Right: true})
	assert.Equal(t, pos(1, 2), p.Pos)
	assert.False(t, bomb.Moving, "不能推炸弹")

	p.BombPush = true
	ApplyInput(g, 1, Input{Right: true})
	assert.Equal(t, pos(1, 2), p.Pos, "推炸弹时玩家不移动")
	require.True(t, bomb.Moving)

	step(g, 300*time.Millisecond)
	assert.Equal(t, pos(1, 13), bomb.Pos, "滑到墙前停下")
	assert.False(t, bomb.Moving)
}

func TestPushedBombSlideSpeed(t *testing.T) {
	g := newTestGame(t, 2, DefaultRoundDuration)
	p := g.Player(1)
	p.BombPush = true
	bomb := NewBomb(1000, pos(1, 2), 2, 2)
	g.AddBomb(bomb)

	ApplyInput(g, 1, Input{Right: true})
	require.True(t, bomb.Moving)

	// 两帧约 33ms：推出的瞬间一格，之后每 10ms 一格
	g.Update(FixedDeltaTime)
	g.Update(FixedDeltaTime)
	assert.Equal(t, pos(1, 6), bomb.Pos)
	assert.True(t, bomb.Moving)
}

func TestMoveCooldownSpacing(t *testing.T) {
	const cooldown = 100 * time.Millisecond
	g := newTestGame(t, 0, DefaultRoundDuration)
	p, err := g.SpawnPlayer(1, false, cooldown)
	require.NoError(t, err)
	_, err = g.SpawnPlayer(2, false, 0)
	require.NoError(t, err)

	var moves []int
	for frame := 0; frame < 30; frame++ {
		before := p.Pos
		ApplyInput(g, 1, Input{Right: true})
		if p.Pos != before {
			moves = append(moves, frame)
		}
		g.Update(FixedDeltaTime)
	}

	require.GreaterOrEqual(t, len(moves), 3)
	for i := 1; i < len(moves); i++ {
		gap := time.Duration(moves[i]-moves[i-1]) * FixedDeltaTime
		assert.GreaterOrEqual(t, gap, cooldown, "冷却未结束就移动")
		assert.Less(t, gap-FixedDeltaTime, cooldown, "冷却结束后多等了一帧")
	}
}

func TestRoundClock(t *testing.T) {
	g := newTestGame(t, 2, time.Second)

	events := step(g, time.Second+FixedDeltaTime)
	assert.True(t, g.Over)
	assert.Equal(t, NoWinner, g.WinnerID)
	assert.True(t, hasEvent(events, EventRoundOver))
	assert.Zero(t, g.Remaining())

	assert.Nil(t, g.Update(FixedDeltaTime), "结束后不再推进")
	assert.False(t, ApplyInput(g, 1, Input{Bomb: true}))
}

func TestWallOfDeathCrush(t *testing.T) {
	g := newTestGame(t, 3, 10*time.Second)
	p1, p2 := g.Player(1), g.Player(2)
	p1.Pos = pos(9, 1)

	step(g, 4500*time.Millisecond)
	assert.Equal(t, wallofdeath.StateDormant, g.WallOfDeath.State())

	p2.BombsAvailable = 0
	g.AddBomb(NewBomb(1000, pos(8, 1), p2.ID, 2))

	events := step(g, time.Second)
	assert.True(t, hasEvent(events, EventWallOfDeathActivated))
	assert.True(t, p1.Dead)
	assert.Equal(t, TileWall, g.Map.GetTile(pos(9, 1)))
	assert.Equal(t, TileWall, g.Map.GetTile(pos(8, 1)))
	assert.Nil(t, g.bombAt(pos(8, 1)))
	assert.Equal(t, 1, p2.BombsAvailable, "被压碎的炸弹归还给主人")
	assert.False(t, g.Over)

	for _, e := range events {
		if e.Kind == EventPlayerDied {
			assert.Equal(t, DeathByWallOfDeath, e.Cause)
		}
	}
}

func TestSnapshot(t *testing.T) {
	g := newTestGame(t, 2, DefaultRoundDuration)
	g.Map.SetTile(pos(1, 3), TileBrick)
	require.NotNil(t, g.Player(1).PlaceBomb(g))

	snap := g.Snapshot(2)
	assert.Equal(t, 4, snap.Blasts[pos(1, 1)], "已有炸弹范围加上余量")
	assert.Equal(t, 2, snap.RangeMargin)
	assert.True(t, snap.Impassable.Has(pos(1, 3)))
	assert.True(t, snap.Impassable.Has(pos(1, 1)))
	assert.True(t, snap.Fireproof.Has(pos(1, 1)))
	assert.True(t, snap.Destructible.Has(pos(1, 3)))
	assert.True(t, snap.Stoppers.Has(g.Player(2).Pos))
	assert.NotNil(t, snap.Sweep)
	assert.False(t, snap.Safe(pos(1, 2)))

	g.Player(1).WallHack = true
	g.Map.StartCrumbling(pos(1, 3))
	snap = g.Snapshot(0)
	assert.True(t, snap.Impassable.Has(pos(1, 3)), "快照与玩家无关")
	assert.True(t, snap.Passable(pos(1, 3), g.Player(1).Mover()), "穿墙时碎裂中的砖块也可以通行")
	assert.False(t, snap.Passable(pos(1, 3), g.Player(2).Mover()))
	assert.False(t, snap.Destructible.Has(pos(1, 3)), "碎裂中的砖块不再计入")
	assert.True(t, snap.Walls.Has(pos(1, 3)))
}
