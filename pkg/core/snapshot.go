package core

import (
	"bombhazard/pkg/grid"
	"bombhazard/pkg/hazard"
)

// Snapshot 构建本帧的危险场快照，所有玩家共用，穿墙等能力由 hazard.Mover 决定
// margin 为假设的炸弹范围增量，同时作用于已有炸弹和假设放置的炸弹
func (g *Game) Snapshot(margin int) hazard.Snapshot {
	walls := g.Map.Walls()
	stone := g.Map.StoneWalls()
	bricks := g.Map.Bricks()

	fire := grid.NewPositionSet()
	for _, f := range g.Fires {
		fire.Add(f.Pos)
	}

	bombs := grid.NewPositionSet()
	blasts := make(hazard.Blasts, len(g.Bombs))
	for _, bomb := range g.Bombs {
		bombs.Add(bomb.Pos)
		r := bomb.Range + margin
		if old, ok := blasts[bomb.Pos]; !ok || r > old {
			blasts[bomb.Pos] = r
		}
	}

	destructible := grid.NewPositionSet()
	for p := range bricks {
		if !g.Map.IsCrumbling(p) {
			destructible.Add(p)
		}
	}

	stoppers := grid.Union(walls, bombs)
	for _, item := range g.Items {
		stoppers.Add(item.Pos)
	}
	for _, player := range g.Players {
		if !player.Dead {
			stoppers.Add(player.Pos)
		}
	}

	snap := hazard.Snapshot{
		Walls:        walls,
		Fire:         fire,
		Blasts:       blasts,
		Fireproof:    grid.Union(walls, bombs),
		Impassable:   grid.Union(stone, bricks, bombs),
		Destructible: destructible,
		Bricks:       bricks,
		BombBlockers: grid.Union(walls, bombs),
		Stoppers:     stoppers,
		Mode:         hazard.ModeBattle,
		RangeMargin:  margin,
	}
	if g.WallOfDeath != nil {
		snap.Sweep = g.WallOfDeath
	}
	return snap
}
