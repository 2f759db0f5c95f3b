package core

import (
	"bombhazard/pkg/grid"
	"bombhazard/pkg/wallofdeath"
)

// world 死亡之墙对游戏状态的访问
type world struct {
	g *Game
}

var _ wallofdeath.World = world{}

func (w world) IsStoneWall(p grid.Position) bool {
	return w.g.Map.IsStoneWall(p)
}

func (w world) OccupantsAt(p grid.Position) []wallofdeath.Occupant {
	var out []wallofdeath.Occupant
	for _, player := range w.g.Players {
		if !player.Dead && player.Pos == p {
			out = append(out, wallofdeath.Occupant{Kind: wallofdeath.OccupantPlayer, ID: player.ID})
		}
	}
	for _, bomb := range w.g.Bombs {
		if bomb.Pos == p {
			out = append(out, wallofdeath.Occupant{
				Kind:     wallofdeath.OccupantBomb,
				ID:       bomb.ID,
				OwnerID:  bomb.OwnerID,
				HasOwner: bomb.HasOwner,
			})
		}
	}
	if w.g.Map.IsBrick(p) {
		out = append(out, wallofdeath.Occupant{Kind: wallofdeath.OccupantWall})
	}
	for _, f := range w.g.Fires {
		if f.Pos == p {
			out = append(out, wallofdeath.Occupant{Kind: wallofdeath.OccupantFire, ID: f.ID})
		}
	}
	for _, item := range w.g.Items {
		if item.Pos == p {
			out = append(out, wallofdeath.Occupant{Kind: wallofdeath.OccupantItem, ID: item.ID})
		}
	}
	return out
}

// Despawn 移除实体；玩家的死亡由 PlayerDied 处理
func (w world) Despawn(o wallofdeath.Occupant) {
	g := w.g
	switch o.Kind {
	case wallofdeath.OccupantBomb:
		g.Bombs = removeByID(g.Bombs, o.ID, func(b *Bomb) int32 { return b.ID })
	case wallofdeath.OccupantFire:
		g.Fires = removeByID(g.Fires, o.ID, func(f *Fire) int32 { return f.ID })
	case wallofdeath.OccupantItem:
		g.Items = removeByID(g.Items, o.ID, func(i *Item) int32 { return i.ID })
	}
}

func (w world) PlayerDied(id int32) {
	if player := w.g.Player(id); player != nil {
		w.g.killPlayer(player, DeathByWallOfDeath)
	}
}

func (w world) RefundBomb(ownerID int32) {
	w.g.refundBomb(ownerID)
}

func (w world) PlaceWall(p grid.Position) {
	w.g.Map.SetTile(p, TileWall)
}

func removeByID[T any](items []T, id int32, idOf func(T) int32) []T {
	kept := items[:0]
	for _, item := range items {
		if idOf(item) != id {
			kept = append(kept, item)
		}
	}
	return kept
}
